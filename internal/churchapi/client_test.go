package churchapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/church-dashboard/internal/churchapi"
	"github.com/magabrotheeeer/church-dashboard/internal/config"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/stats"
)

func newClient(t *testing.T, h http.Handler, pageSize int) *churchapi.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return churchapi.NewClient(config.ChurchAPI{
		BaseURL:      srv.URL + "/",
		ServiceToken: "svc-token",
		APITimeout:   2 * time.Second,
		PageSize:     pageSize,
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListAttendance_Paginates(t *testing.T) {
	from := time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	var calls int

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/attendance", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-04-16T00:00:00Z", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2024-06-15T00:00:00Z", r.URL.Query().Get("endDate"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
		all := []map[string]any{
			{"id": "a1", "date": "2024-06-09T10:00:00Z", "serviceType": "SUNDAY_SERVICE", "isVisitor": false, "memberId": "m1"},
			{"id": "a2", "date": "2024-06-09T10:05:00Z", "serviceType": "SUNDAY_SERVICE", "isVisitor": true},
			{"id": "a3", "date": "2024-06-12T19:00:00Z", "serviceType": "BIBLE_STUDY", "isVisitor": false, "memberId": "m2"},
		}
		start := (pageNum - 1) * 2
		end := min(start+2, len(all))
		writeJSON(t, w, map[string]any{
			"data": all[start:end],
			"meta": map[string]any{"total": len(all), "page": pageNum, "limit": 2, "totalPages": 2},
		})
	})

	client := newClient(t, h, 2)
	records, err := client.ListAttendance(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "a3", records[2].ID)
	assert.Equal(t, models.BibleStudy, records[2].ServiceType)
	assert.True(t, records[1].IsVisitor)
}

func TestListTithes_InvalidAmount(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"data": []map[string]any{
				{"id": "t1", "amount": 100, "paymentType": "TITHE", "paymentDate": "2024-06-02"},
				{"id": "t2", "amount": -4, "paymentType": "TITHE", "paymentDate": "2024-06-03"},
			},
			"meta": map[string]any{"total": 2},
		})
	})

	client := newClient(t, h, 50)
	_, err := client.ListTithes(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)

	var qerr *stats.InvalidQuantityError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "t2", qerr.RecordID)
}

func TestListEvents_SendsStatus(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "COMPLETED", r.URL.Query().Get("status"))
		writeJSON(t, w, map[string]any{
			"data": []map[string]any{{"id": "e1", "startTime": "2024-06-01T18:00:00Z", "status": "COMPLETED"}},
		})
	})

	client := newClient(t, h, 10)
	events, err := client.ListEvents(context.Background(), models.EventCompleted, time.Now().AddDate(0, 0, -30), time.Now())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCompleted, events[0].Status)
}

func TestListUpcomingEvents(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/upcoming", r.URL.Path)
		writeJSON(t, w, map[string]any{
			"data": []map[string]any{
				{"id": "e1", "startTime": "2024-06-20T18:00:00Z", "status": "PUBLISHED"},
				{"id": "e2", "startTime": "2024-06-22T09:00:00Z", "status": "DRAFT"},
			},
		})
	})

	client := newClient(t, h, 10)
	events, err := client.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestMemberCount(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/members/count", r.URL.Path)
		writeJSON(t, w, map[string]any{"count": 120, "previousCount": 110})
	})

	client := newClient(t, h, 10)
	mc, err := client.MemberCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.MemberCount{CurrentTotal: 120, PreviousTotal: 110}, mc)
}

func TestCreateAttendance(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.AttendanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.MemberID != nil && *req.MemberID == "blocked" {
			w.WriteHeader(http.StatusConflict)
			writeJSON(t, w, map[string]string{"message": "already marked"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	client := newClient(t, h, 10)
	ok := "m1"
	err := client.CreateAttendance(context.Background(), models.AttendanceRequest{Date: "2024-06-09", ServiceType: "SUNDAY_SERVICE", MemberID: &ok})
	require.NoError(t, err)

	blocked := "blocked"
	err = client.CreateAttendance(context.Background(), models.AttendanceRequest{Date: "2024-06-09", ServiceType: "SUNDAY_SERVICE", MemberID: &blocked})
	var apiErr *churchapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "already marked", apiErr.Message)
}

func TestAPIError_ServerFailure(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := newClient(t, h, 10)
	_, err := client.MemberCount(context.Background())

	var apiErr *churchapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestListAttendance_ContextCancelled(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"data": []any{}})
	})
	client := newClient(t, h, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListAttendance(ctx, time.Now().AddDate(0, 0, -60), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}
