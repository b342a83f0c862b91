package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amishk599/easyapply/internal/api/handler"
	"github.com/amishk599/easyapply/internal/model"
)

var _ = Describe("RunHandler", func() {
	var (
		router *gin.Engine
		runs   *mockRuns
		svc    *mockSettings
	)

	post := func(body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(http.MethodPost, "/api/run", nil)
		} else {
			req = httptest.NewRequest(http.MethodPost, "/api/run", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		router = gin.New()
		runs = &mockRuns{accept: true}
		svc = &mockSettings{creds: model.Credentials{Email: "me@example.com", Password: "pw"}}
		h := handler.NewRunHandler(runs, svc, model.DefaultSearchFilters())
		router.POST("/api/run", h.Start)
	})

	It("starts a run with the posted filters", func() {
		w := post(`{"positions":["Backend Engineer"],"remote_only":true,"max_jobs_per_run":5}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["started"]).To(BeTrue())

		Expect(runs.started).To(HaveLen(1))
		f := runs.started[0]
		Expect(f.Positions).To(Equal([]string{"Backend Engineer"}))
		Expect(f.RemoteOnly).To(BeTrue())
		Expect(f.MaxJobsPerRun).To(Equal(5))
		Expect(f.EasyApplyOnly).To(BeTrue(), "unset fields keep their defaults")
	})

	It("uses the defaults for an empty body", func() {
		w := post("")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(runs.started).To(HaveLen(1))
		Expect(runs.started[0].Limit()).To(Equal(model.DefaultMaxJobsPerRun))
	})

	It("returns 409 when a run is active", func() {
		runs.accept = false

		w := post(`{}`)

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("returns 400 when credentials are missing", func() {
		svc.creds = model.Credentials{Email: "me@example.com"}

		w := post(`{}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(runs.started).To(BeEmpty())
	})

	It("returns 400 on invalid request body", func() {
		w := post(`{"max_jobs_per_run":"many"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(runs.started).To(BeEmpty())
	})

	It("returns 400 on a negative job cap", func() {
		w := post(`{"max_jobs_per_run":-1}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
