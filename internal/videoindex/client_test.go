package videoindex

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/config"
	"github.com/momentmatch/momentmatch/internal/db"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
)

func testClient(t *testing.T, serverURL string, cache *db.RedisStore) *Client {
	t.Helper()
	cfg := config.Config{
		VideoIndexURL:      serverURL,
		VideoIndexAPIKey:   "test-key",
		VideoIndexTimeout:  5 * time.Second,
		SearchHitsPerQuery: 3,
		ResponseCacheTTL:   time.Minute,
	}
	return NewClient(cfg, cache, zap.NewNop(), observability.NewNoOpRegistry())
}

func testCache(t *testing.T) *db.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return &db.RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
}

func TestSearchSendsAPIKeyAndFilters(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":[{"start":1.5,"end":9.2,"confidence":"high","metadata":[{"text":"an exciting reveal"}]}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	hits, err := c.Search(t.Context(), "idx1", "exciting moment or announcement", "vid1")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "idx1", gotBody["index_id"])
	assert.Equal(t, map[string]any{"id": "vid1"}, gotBody["filter"])
	require.Len(t, hits, 1)
	assert.Equal(t, 1.5, hits[0].Start)
	assert.Equal(t, "an exciting reveal", hits[0].Metadata[0].Text)
}

func TestSearchErrorIncludesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	_, err := c.Search(t.Context(), "missing", "query", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "index not found")
}

func TestSearchServedFromCacheOnRepeat(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"data":[{"start":0,"end":5,"confidence":70,"metadata":[{"text":"hit"}]}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, testCache(t))

	first, err := c.Search(t.Context(), "idx", "q", "vid")
	require.NoError(t, err)
	second, err := c.Search(t.Context(), "idx", "q", "vid")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)
}

func TestSearchAdMomentsBuildsCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// Only the product query returns hits; the rest come back empty.
		if body["query_text"] == "product mention or recommendation" {
			_, _ = w.Write([]byte(`{"data":[
				{"start":10.2,"end":24.9,"confidence":"high","metadata":[{"text":"she loves this gadget"}]},
				{"start":30,"end":40,"confidence":82,"metadata":[]},
				{"start":50,"end":60,"confidence":"medium","metadata":[{"text":"spot three"}]},
				{"start":70,"end":80,"confidence":"high","metadata":[{"text":"spot four"}]}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	candidates, err := c.SearchAdMoments(t.Context(), "idx", "vid")
	require.NoError(t, err)

	// Capped at hitsPerQuery per query.
	require.Len(t, candidates, 3)
	assert.Equal(t, 90, candidates[0].Confidence)
	assert.Equal(t, models.TonePositive, candidates[0].Emotion)
	assert.Equal(t, "product", candidates[0].Category)
	assert.Equal(t, "she loves this gadget", candidates[0].Text)

	// Hit without metadata text falls back to the query.
	assert.Equal(t, "product mention or recommendation", candidates[1].Text)
	assert.Equal(t, 82, candidates[1].Confidence)
}

func TestSearchAdMomentsMetadatalessHitIsNeutral(t *testing.T) {
	// The "exciting" query contains an emotion keyword. A hit without
	// transcript text must not inherit a tone from the query it matched.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["query_text"] == "exciting moment or announcement" {
			_, _ = w.Write([]byte(`{"data":[{"start":5,"end":12,"confidence":"high","metadata":[]}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	candidates, err := c.SearchAdMoments(t.Context(), "idx", "vid")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.ToneNeutral, candidates[0].Emotion)
	assert.Equal(t, "exciting moment or announcement", candidates[0].Text)
}

func TestSearchAdMomentsSkipsFailedQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["query_text"] == "emotional peak or highlight" {
			http.Error(w, "upstream timeout", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"start":0,"end":5,"confidence":"low","metadata":[{"text":"calm intro"}]}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	candidates, err := c.SearchAdMoments(t.Context(), "idx", "vid")
	require.NoError(t, err)
	assert.Len(t, candidates, 4)
}

func TestSearchAdMomentsFailsWhenProviderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	candidates, err := c.SearchAdMoments(t.Context(), "idx", "vid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all ad moment queries failed")
	assert.Empty(t, candidates)
}

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"high label", `"high"`, 90},
		{"medium label", `"medium"`, 70},
		{"low label", `"low"`, 50},
		{"case insensitive", `"HIGH"`, 90},
		{"unknown label", `"stellar"`, 75},
		{"integer", `83`, 83},
		{"float rounds", `66.7`, 67},
		{"negative clamps", `-3`, 0},
		{"over 100 clamps", `140`, 100},
		{"empty", ``, 75},
		{"object", `{"score":80}`, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeConfidence(json.RawMessage(tt.raw)))
		})
	}
}

func TestDetectEmotion(t *testing.T) {
	tests := []struct {
		text string
		want models.EmotionalTone
	}{
		{"An exciting product reveal", models.ToneExcited},
		{"this is AMAZING", models.ToneExcited},
		{"a sad farewell", models.ToneNegative},
		{"unfortunately it broke", models.ToneNegative},
		{"so much fun with friends", models.TonePositive},
		{"the quarterly report", models.ToneNeutral},
		// Excitement words win over positive words.
		{"great fun", models.ToneExcited},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectEmotion(tt.text), tt.text)
	}
}

func TestCategorizeQuery(t *testing.T) {
	assert.Equal(t, "educational", categorizeQuery("educational explanation or tutorial"))
	assert.Equal(t, "product", categorizeQuery("product mention or recommendation"))
	assert.Equal(t, "lifestyle", categorizeQuery("emotional peak or highlight"))
	assert.Equal(t, "entertainment", categorizeQuery("exciting moment or announcement"))
	assert.Equal(t, "general", categorizeQuery("beginning of new topic or segment"))
}
