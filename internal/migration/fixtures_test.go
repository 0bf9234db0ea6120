package migration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func newTestClient(ts *httptest.Server) *platform.Client {
	return platform.NewClient(&models.Target{Name: "test", URL: ts.URL}, 5*time.Second)
}

func writeTestJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func envelope(resource string, items string) string {
	return `{"_embedded":{"` + resource + `":` + items + `},"page":{"size":1000,"totalElements":1,"totalPages":1,"number":0}}`
}

// newFakeOrigin serves a small legacy portfolio: two tag types, three
// tags, one stakeholder, two applications (one without a business
// service), a dependency and one assessment.
func newFakeOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	static := map[string]string{
		"GET /api/controls/tag-type": envelope("tag-type", `[
			{"id":1,"name":"Language","colour":"#ff0000","rank":1,"createUser":"admin","tags":[{"id":10,"name":"Java"},{"id":11,"name":"Security"}]},
			{"id":2,"name":"Operating System","rank":2,"tags":[{"id":20,"name":"RHEL 8"}]}]`),
		"GET /api/controls/job-function":      envelope("job-function", `[{"id":1,"role":"Business Analyst"},{"id":2,"role":"Consultant"}]`),
		"GET /api/controls/stakeholder-group": envelope("stakeholder-group", `[{"id":1,"name":"Managers","description":"Managers group"}]`),
		"GET /api/controls/stakeholder": envelope("stakeholder", `[
			{"id":1,"displayName":"Jane","email":"jane@example.com","jobFunction":{"id":3,"role":"Architect"},"stakeholderGroups":[{"id":1,"name":"Managers"}]}]`),
		"GET /api/controls/business-service": envelope("business-service", `[{"id":1,"name":"Finance","owner":{"id":1,"displayName":"Jane"}}]`),
		"GET /api/application-inventory/application": envelope("application", `[
			{"id":7,"name":"billing","description":"Billing system","businessService":"1","tags":["10","11"],
			 "review":{"id":3,"proposedAction":"rehost","effortEstimate":"small","businessCriticality":5,"workPriority":3,"comments":"ok"}},
			{"id":8,"name":"legacy","businessService":null,"tags":["20"]}]`),
		"GET /api/application-inventory/applications-dependency": envelope("applications-dependency", `[
			{"id":1,"from":{"id":8,"name":"legacy"},"to":{"id":7,"name":"billing"}}]`),
		"GET /api/pathfinder/assessments/100": `{"id":100,"applicationId":7,"status":"COMPLETE","stakeholders":[1],"stakeholderGroups":[1],
			"questionnaire":{"categories":[{"id":1,"order":2,"title":"Application details","questions":[
				{"id":5,"order":1,"question":"How is it deployed?","options":[
					{"id":50,"order":1,"option":"Container","checked":false,"risk":"GREEN"},
					{"id":51,"order":3,"option":"Bare metal","checked":true,"risk":"RED"}]}]}]}}`,
	}

	mux := http.NewServeMux()
	for pattern, body := range static {
		body := body
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	mux.HandleFunc("GET /api/pathfinder/assessments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("applicationId") == "7" {
			w.Write([]byte(`[{"id":100,"applicationId":7}]`))
			return
		}
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("POST /api/pathfinder/assessments/assessment-risk", func(w http.ResponseWriter, r *http.Request) {
		var filter []map[string]int
		json.NewDecoder(r.Body).Decode(&filter)
		if len(filter) == 1 && filter[0]["applicationId"] == 7 {
			w.Write([]byte(`[{"assessmentId":100,"applicationId":7,"risk":"RED"}]`))
			return
		}
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("POST /api/pathfinder/assessments/confidence", func(w http.ResponseWriter, r *http.Request) {
		var filter []map[string]int
		json.NewDecoder(r.Body).Decode(&filter)
		if len(filter) == 1 && filter[0]["applicationId"] == 7 {
			w.Write([]byte(`[{"assessmentId":100,"applicationId":7,"confidence":42}]`))
			return
		}
		w.Write([]byte(`[]`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// fakeHub is an in-memory destination. Posted records keep their id;
// posted assessments are instantiated from template with fresh ids.
type fakeHub struct {
	mu       sync.Mutex
	records  map[string][]map[string]interface{}
	calls    []string
	nextID   int
	template models.Questionnaire
	failPost map[string]int
}

func newFakeHub(t *testing.T) (*fakeHub, *httptest.Server) {
	t.Helper()
	h := &fakeHub{
		records:  make(map[string][]map[string]interface{}),
		nextID:   1000,
		failPost: make(map[string]int),
		template: models.Questionnaire{Categories: []models.Category{{
			ID: 901, Order: 2, Title: "Application details",
			Questions: []models.Question{{
				ID: 902, Order: 1, Question: "How is it deployed?",
				Options: []models.Option{
					{ID: 903, Order: 1, Option: "Container"},
					{ID: 904, Order: 3, Option: "Bare metal"},
				},
			}},
		}}},
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return h, ts
}

// seedDefaults loads the reference data a fresh destination ships with.
func (h *fakeHub) seedDefaults() {
	h.put(models.TagTypes, map[string]interface{}{"id": float64(1), "name": "Language"})
	h.put(models.Tags, map[string]interface{}{"id": float64(1), "name": "security", "tagType": map[string]interface{}{"id": float64(1), "name": "Language"}})
	h.put(models.JobFunctions, map[string]interface{}{"id": float64(1), "name": "Business Analyst"})
}

func (h *fakeHub) put(t models.EntityType, recs ...map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	path := platform.DestinationPath(t)
	h.records[path] = append(h.records[path], recs...)
}

func (h *fakeHub) rejectPosts(t models.EntityType, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failPost[platform.DestinationPath(t)] = status
}

func (h *fakeHub) editTemplate(fn func(q *models.Questionnaire)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.template)
}

func (h *fakeHub) list(t models.EntityType) []map[string]interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]interface{}(nil), h.records[platform.DestinationPath(t)]...)
}

// callsWith returns the recorded "METHOD path" calls for one method.
func (h *fakeHub) callsWith(method string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, c := range h.calls {
		if strings.HasPrefix(c, method+" ") {
			out = append(out, strings.TrimPrefix(c, method+" "))
		}
	}
	return out
}

func isHubCollection(path string) bool {
	for _, t := range models.Types() {
		if platform.DestinationPath(t) == path {
			return true
		}
	}
	return false
}

func splitHubPath(path string) (string, int, bool) {
	if isHubCollection(path) {
		return path, 0, true
	}
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", 0, false
	}
	id, err := strconv.Atoi(path[i+1:])
	if err != nil || !isHubCollection(path[:i]) {
		return "", 0, false
	}
	return path[:i], id, true
}

func (h *fakeHub) index(coll string, id int) int {
	for i, rec := range h.records[coll] {
		if toInt(rec["id"]) == id {
			return i
		}
	}
	return -1
}

func (h *fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, r.Method+" "+r.URL.Path)

	coll, id, ok := splitHubPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	assessments := platform.DestinationPath(models.Assessments)

	switch {
	case r.Method == http.MethodGet && id == 0:
		out := []map[string]interface{}{}
		appFilter := r.URL.Query().Get("applicationId")
		for _, rec := range h.records[coll] {
			if appFilter != "" && strconv.Itoa(toInt(rec["applicationId"])) != appFilter {
				continue
			}
			out = append(out, rec)
		}
		writeTestJSON(w, http.StatusOK, out)

	case r.Method == http.MethodGet:
		i := h.index(coll, id)
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		writeTestJSON(w, http.StatusOK, h.records[coll][i])

	case r.Method == http.MethodPost && id == 0:
		if status := h.failPost[coll]; status != 0 {
			writeTestJSON(w, status, map[string]string{"error": "rejected"})
			return
		}
		var rec map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeTestJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if coll == assessments {
			h.nextID++
			rec = h.newAssessment(h.nextID, toInt(rec["applicationId"]))
		} else if toInt(rec["id"]) == 0 {
			h.nextID++
			rec["id"] = float64(h.nextID)
		}
		h.records[coll] = append(h.records[coll], rec)
		writeTestJSON(w, http.StatusCreated, rec)

	case r.Method == http.MethodPatch && id != 0:
		i := h.index(coll, id)
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		var rec map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeTestJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.records[coll][i] = rec
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete && id != 0:
		i := h.index(coll, id)
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		h.records[coll] = append(h.records[coll][:i], h.records[coll][i+1:]...)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *fakeHub) newAssessment(id, appID int) map[string]interface{} {
	a := models.Assessment{ID: id, ApplicationID: appID, Status: "STARTED", Questionnaire: h.template}
	data, _ := json.Marshal(a)
	var rec map[string]interface{}
	json.Unmarshal(data, &rec)
	return rec
}
