package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amishk599/easyapply/internal/api/handler"
)

var _ = Describe("HealthHandler", func() {
	It("reports liveness and whether a run is active", func() {
		runs := &mockRuns{running: true}
		router := gin.New()
		router.GET("/health", handler.NewHealthHandler(runs).Check)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveKeyWithValue("ok", true))
		Expect(resp).To(HaveKeyWithValue("running", true))
	})
})

var _ = Describe("EventsHandler", func() {
	It("returns 503 when redis is not configured", func() {
		router := gin.New()
		router.GET("/api/events", handler.NewEventsHandler(nil, "easyapply:status").Stream)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(w.Body.String()).To(ContainSubstring("redis not configured"))
	})
})
