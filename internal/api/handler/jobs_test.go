package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amishk599/easyapply/internal/api/handler"
	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/store"
)

var _ = Describe("JobsHandler", func() {
	var (
		router   *gin.Engine
		outcomes *mockOutcomes
		seen     store.ListOptions
	)

	BeforeEach(func() {
		router = gin.New()
		outcomes = &mockOutcomes{}
		seen = store.ListOptions{}
		outcomes.listFn = func(_ context.Context, opts store.ListOptions) ([]model.JobRecord, error) {
			seen = opts
			return []model.JobRecord{{ID: 1, JobID: "42", Title: "SRE", Status: model.StatusApplied}}, nil
		}
		h := handler.NewJobsHandler(outcomes)
		router.GET("/api/jobs", h.List)
		router.GET("/api/dashboard", h.Dashboard)
	})

	Describe("List", func() {
		It("defaults the limit to 100", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen.Limit).To(Equal(100))
			Expect(seen.Status).To(BeEmpty())

			var resp []map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveLen(1))
			Expect(resp[0]["job_id"]).To(Equal("42"))
		})

		It("passes limit and status through", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs?limit=5&status=failed", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen.Limit).To(Equal(5))
			Expect(seen.Status).To(Equal(model.StatusFailed))
		})

		It("returns an empty array rather than null", func() {
			outcomes.listFn = func(context.Context, store.ListOptions) ([]model.JobRecord, error) {
				return nil, nil
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("[]"))
		})

		DescribeTable("rejects bad query parameters",
			func(query string) {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs?"+query, nil))
				Expect(w.Code).To(Equal(http.StatusBadRequest))
			},
			Entry("non-numeric limit", "limit=ten"),
			Entry("zero limit", "limit=0"),
			Entry("unknown status", "status=pending"),
		)

		It("returns 500 when the store fails", func() {
			outcomes.listFn = func(context.Context, store.ListOptions) ([]model.JobRecord, error) {
				return nil, errors.New("db down")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Dashboard", func() {
		It("returns the stats", func() {
			outcomes.statsFn = func(_ context.Context, now time.Time) (model.DashboardStats, error) {
				return model.DashboardStats{TotalApplied: 7, AppliedToday: 2, Date: now.UTC().Format("2006-01-02")}, nil
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["total_applied"]).To(BeNumerically("==", 7))
			Expect(resp["applied_today"]).To(BeNumerically("==", 2))
			Expect(resp).To(HaveKey("date"))
		})

		It("returns 500 when the store fails", func() {
			outcomes.statsFn = func(context.Context, time.Time) (model.DashboardStats, error) {
				return model.DashboardStats{}, errors.New("db down")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
