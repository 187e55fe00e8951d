package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS videos (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    uploaded_at TIMESTAMP NOT NULL DEFAULT NOW(),
    status TEXT NOT NULL DEFAULT 'pending',
    video_url TEXT,
    duration INT,
    task_id TEXT,
    index_id TEXT
);

CREATE TABLE IF NOT EXISTS ad_moments (
    id TEXT PRIMARY KEY,
    video_id TEXT NOT NULL REFERENCES videos(id),
    start_time INT NOT NULL,
    end_time INT NOT NULL,
    context TEXT NOT NULL,
    emotional_tone TEXT,
    category TEXT,
    confidence INT,
    engagement_score INT,
    attention_score INT,
    placement_tier TEXT,
    cpm_min INT,
    cpm_max INT,
    overall_score INT,
    category_tags TEXT[]
);

CREATE TABLE IF NOT EXISTS ad_recommendations (
    id TEXT PRIMARY KEY,
    moment_id TEXT NOT NULL REFERENCES ad_moments(id),
    product_name TEXT NOT NULL,
    brand_name TEXT,
    description TEXT,
    product_url TEXT,
    reasoning TEXT,
    relevance_score INT,
    estimated_cpm INT,
    estimated_ctr INT,
    projected_revenue INT,
    selected BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS brand_mentions (
    id TEXT PRIMARY KEY,
    video_id TEXT NOT NULL REFERENCES videos(id),
    ts TEXT NOT NULL,
    time_in_seconds INT NOT NULL,
    description TEXT NOT NULL,
    mention_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS brand_mention_recommendations (
    id TEXT PRIMARY KEY,
    brand_mention_id TEXT NOT NULL REFERENCES brand_mentions(id),
    product_name TEXT NOT NULL,
    brand_name TEXT,
    description TEXT,
    product_url TEXT,
    reasoning TEXT,
    relevance_score INT
);

CREATE INDEX IF NOT EXISTS idx_ad_moments_video_id ON ad_moments (video_id);
CREATE INDEX IF NOT EXISTS idx_ad_recommendations_moment_id ON ad_recommendations (moment_id);
CREATE INDEX IF NOT EXISTS idx_brand_mentions_video_id ON brand_mentions (video_id);
CREATE INDEX IF NOT EXISTS idx_brand_mention_recs_mention_id ON brand_mention_recommendations (brand_mention_id);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GetVideo fetches one video row. Returns models.ErrNotFound when absent.
func (p *Postgres) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	var url, taskID, indexID sql.NullString
	var duration sql.NullInt64
	err := p.DB.QueryRowContext(ctx,
		`SELECT id, filename, uploaded_at, status, video_url, duration, task_id, index_id FROM videos WHERE id = $1`,
		id).Scan(&v.ID, &v.Filename, &v.UploadedAt, &v.Status, &url, &duration, &taskID, &indexID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query video: %w", err)
	}
	if url.Valid {
		v.VideoURL = url.String
	}
	if duration.Valid {
		v.Duration = int(duration.Int64)
	}
	v.TaskID = taskID.String
	v.IndexID = indexID.String
	return &v, nil
}

// InsertVideo persists a new video row.
func (p *Postgres) InsertVideo(ctx context.Context, v *models.Video) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO videos (id, filename, status, video_url, duration, task_id, index_id)
		 VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,0),NULLIF($6,''),NULLIF($7,''))`,
		v.ID, v.Filename, v.Status, v.VideoURL, v.Duration, v.TaskID, v.IndexID)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// UpdateVideoStatus sets the video's pipeline status unconditionally.
func (p *Postgres) UpdateVideoStatus(ctx context.Context, id string, status models.VideoStatus) error {
	res, err := p.DB.ExecContext(ctx, `UPDATE videos SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update video status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClaimVideoForAnalysis transitions a video into the processing state with a
// single conditional update. Only one caller can win the claim; a concurrent
// analysis of the same video observes zero affected rows and receives
// models.ErrAlreadyRunning. Completed videos are never re-claimed.
func (p *Postgres) ClaimVideoForAnalysis(ctx context.Context, id string) error {
	res, err := p.DB.ExecContext(ctx,
		`UPDATE videos SET status = $2 WHERE id = $1 AND status IN ($3, $4)`,
		id, models.StatusProcessing, models.StatusPending, models.StatusFailed)
	if err != nil {
		return fmt.Errorf("claim video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim video rows: %w", err)
	}
	if n == 0 {
		return models.ErrAlreadyRunning
	}
	return nil
}

// ClearAnalysis removes moments, mentions and their recommendations left by a
// previous (possibly crashed) analysis run. Called after a successful claim so
// a retry starts from a clean slate.
func (p *Postgres) ClearAnalysis(ctx context.Context, videoID string) error {
	statements := []string{
		`DELETE FROM ad_recommendations WHERE moment_id IN (SELECT id FROM ad_moments WHERE video_id = $1)`,
		`DELETE FROM ad_moments WHERE video_id = $1`,
		`DELETE FROM brand_mention_recommendations WHERE brand_mention_id IN (SELECT id FROM brand_mentions WHERE video_id = $1)`,
		`DELETE FROM brand_mentions WHERE video_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := p.DB.ExecContext(ctx, stmt, videoID); err != nil {
			return fmt.Errorf("clear analysis: %w", err)
		}
	}
	return nil
}

// InsertAdMoment persists one scored moment.
func (p *Postgres) InsertAdMoment(ctx context.Context, m *models.AdMoment) error {
	q := m.Quality
	if q == nil {
		q = &models.SpotQuality{}
	}
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO ad_moments
		 (id, video_id, start_time, end_time, context, emotional_tone, category, confidence,
		  engagement_score, attention_score, placement_tier, cpm_min, cpm_max, overall_score, category_tags)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		m.ID, m.VideoID, m.StartTime, m.EndTime, m.Context, m.EmotionalTone, m.Category, m.Confidence,
		q.EngagementScore, q.AttentionScore, q.PlacementTier, q.EstimatedCpmMin, q.EstimatedCpmMax,
		q.OverallScore, pq.Array(q.CategoryTags))
	if err != nil {
		return fmt.Errorf("insert ad moment: %w", err)
	}
	return nil
}

// InsertAdRecommendation persists one product recommendation for a moment.
func (p *Postgres) InsertAdRecommendation(ctx context.Context, r *models.AdRecommendation) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO ad_recommendations
		 (id, moment_id, product_name, brand_name, description, product_url, reasoning,
		  relevance_score, estimated_cpm, estimated_ctr, projected_revenue, selected)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.MomentID, r.ProductName, r.BrandName, r.Description, r.ProductURL, r.Reasoning,
		r.RelevanceScore, r.EstimatedCPM, r.EstimatedCTR, r.ProjectedRevenue, r.Selected)
	if err != nil {
		return fmt.Errorf("insert ad recommendation: %w", err)
	}
	return nil
}

// ListMoments returns a video's moments ordered by start time, each with its
// recommendations attached.
func (p *Postgres) ListMoments(ctx context.Context, videoID string) ([]models.AdMoment, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT id, video_id, start_time, end_time, context, emotional_tone, category, confidence,
		        engagement_score, attention_score, placement_tier, cpm_min, cpm_max, overall_score, category_tags
		 FROM ad_moments WHERE video_id = $1 ORDER BY start_time`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query moments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var moments []models.AdMoment
	for rows.Next() {
		var m models.AdMoment
		var tone, category, tier sql.NullString
		var confidence, engagement, attention, cpmMin, cpmMax, overall sql.NullInt64
		var tags pq.StringArray
		if err := rows.Scan(&m.ID, &m.VideoID, &m.StartTime, &m.EndTime, &m.Context, &tone, &category,
			&confidence, &engagement, &attention, &tier, &cpmMin, &cpmMax, &overall, &tags); err != nil {
			return nil, fmt.Errorf("scan moment: %w", err)
		}
		m.EmotionalTone = models.ToneNeutral
		if tone.Valid {
			m.EmotionalTone = models.EmotionalTone(tone.String)
		}
		if category.Valid {
			m.Category = category.String
		}
		if confidence.Valid {
			m.Confidence = int(confidence.Int64)
		}
		if tier.Valid {
			m.Quality = &models.SpotQuality{
				EngagementScore: int(engagement.Int64),
				AttentionScore:  int(attention.Int64),
				PlacementTier:   models.PlacementTier(tier.String),
				EstimatedCpmMin: int(cpmMin.Int64),
				EstimatedCpmMax: int(cpmMax.Int64),
				CategoryTags:    tags,
				OverallScore:    int(overall.Int64),
			}
		}
		m.Recommendations = []models.AdRecommendation{}
		moments = append(moments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range moments {
		recs, err := p.listRecommendations(ctx, moments[i].ID)
		if err != nil {
			return nil, err
		}
		moments[i].Recommendations = recs
	}
	return moments, nil
}

func (p *Postgres) listRecommendations(ctx context.Context, momentID string) ([]models.AdRecommendation, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT id, moment_id, product_name, brand_name, description, product_url, reasoning,
		        relevance_score, estimated_cpm, estimated_ctr, projected_revenue, selected
		 FROM ad_recommendations WHERE moment_id = $1 ORDER BY relevance_score DESC`, momentID)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	recs := []models.AdRecommendation{}
	for rows.Next() {
		var r models.AdRecommendation
		var brand, desc, url, reasoning sql.NullString
		var relevance, cpm, ctr, revenue sql.NullInt64
		if err := rows.Scan(&r.ID, &r.MomentID, &r.ProductName, &brand, &desc, &url, &reasoning,
			&relevance, &cpm, &ctr, &revenue, &r.Selected); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		r.BrandName = brand.String
		r.Description = desc.String
		r.ProductURL = url.String
		r.Reasoning = reasoning.String
		r.RelevanceScore = int(relevance.Int64)
		r.EstimatedCPM = int(cpm.Int64)
		r.EstimatedCTR = int(ctr.Int64)
		r.ProjectedRevenue = int(revenue.Int64)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recs, nil
}

// InsertBrandMention persists one whole-video analysis hit.
func (p *Postgres) InsertBrandMention(ctx context.Context, m *models.BrandMention) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO brand_mentions (id, video_id, ts, time_in_seconds, description, mention_type)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.VideoID, m.Timestamp, m.TimeInSeconds, m.Description, m.Type)
	if err != nil {
		return fmt.Errorf("insert brand mention: %w", err)
	}
	return nil
}

// InsertBrandMentionRecommendation persists one recommendation for a brand mention.
func (p *Postgres) InsertBrandMentionRecommendation(ctx context.Context, mentionID string, r *models.AdRecommendation) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO brand_mention_recommendations
		 (id, brand_mention_id, product_name, brand_name, description, product_url, reasoning, relevance_score)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, mentionID, r.ProductName, r.BrandName, r.Description, r.ProductURL, r.Reasoning, r.RelevanceScore)
	if err != nil {
		return fmt.Errorf("insert brand mention recommendation: %w", err)
	}
	return nil
}

// ListBrandMentions returns a video's brand mentions in timeline order with
// recommendations attached.
func (p *Postgres) ListBrandMentions(ctx context.Context, videoID string) ([]models.BrandMention, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT id, video_id, ts, time_in_seconds, description, mention_type
		 FROM brand_mentions WHERE video_id = $1 ORDER BY time_in_seconds`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query brand mentions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var mentions []models.BrandMention
	for rows.Next() {
		var m models.BrandMention
		if err := rows.Scan(&m.ID, &m.VideoID, &m.Timestamp, &m.TimeInSeconds, &m.Description, &m.Type); err != nil {
			return nil, fmt.Errorf("scan brand mention: %w", err)
		}
		m.Recommendations = []models.AdRecommendation{}
		mentions = append(mentions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range mentions {
		recs, err := p.listMentionRecommendations(ctx, mentions[i].ID)
		if err != nil {
			return nil, err
		}
		mentions[i].Recommendations = recs
	}
	return mentions, nil
}

func (p *Postgres) listMentionRecommendations(ctx context.Context, mentionID string) ([]models.AdRecommendation, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT id, product_name, brand_name, description, product_url, reasoning, relevance_score
		 FROM brand_mention_recommendations WHERE brand_mention_id = $1 ORDER BY relevance_score DESC`, mentionID)
	if err != nil {
		return nil, fmt.Errorf("query mention recommendations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	recs := []models.AdRecommendation{}
	for rows.Next() {
		var r models.AdRecommendation
		var brand, desc, url, reasoning sql.NullString
		var relevance sql.NullInt64
		if err := rows.Scan(&r.ID, &r.ProductName, &brand, &desc, &url, &reasoning, &relevance); err != nil {
			return nil, fmt.Errorf("scan mention recommendation: %w", err)
		}
		r.BrandName = brand.String
		r.Description = desc.String
		r.ProductURL = url.String
		r.Reasoning = reasoning.String
		r.RelevanceScore = int(relevance.Int64)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recs, nil
}
