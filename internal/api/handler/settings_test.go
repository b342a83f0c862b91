package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amishk599/easyapply/internal/api/handler"
	"github.com/amishk599/easyapply/internal/settings"
)

var _ = Describe("SettingsHandler", func() {
	var (
		router *gin.Engine
		svc    *mockSettings
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockSettings{safe: settings.Values{
			LinkedinEmail:    "me@example.com",
			LinkedinPassword: settings.Mask,
			OpenAIModel:      "gpt-4o-mini",
		}}
		h := handler.NewSettingsHandler(svc)
		router.GET("/api/settings", h.Get)
		router.POST("/api/settings", h.Update)
	})

	It("returns the masked settings", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["linkedin_email"]).To(Equal("me@example.com"))
		Expect(resp["linkedin_password"]).To(Equal(settings.Mask))
	})

	It("applies a partial patch and returns the masked view", func() {
		body := []byte(`{"openai_model":"gpt-4.1"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.patches).To(HaveLen(1))
		Expect(svc.patches[0].OpenAIModel).NotTo(BeNil())
		Expect(*svc.patches[0].OpenAIModel).To(Equal("gpt-4.1"))
		Expect(svc.patches[0].LinkedinEmail).To(BeNil())
		Expect(w.Body.String()).To(ContainSubstring(settings.Mask))
	})

	It("returns 400 on invalid request body", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewBufferString(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.patches).To(BeEmpty())
	})

	It("returns 500 when persisting fails", func() {
		svc.updateFn = func(settings.Patch) (settings.Values, error) {
			return settings.Values{}, errors.New("disk full")
		}
		req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
