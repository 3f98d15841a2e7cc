// internal/store/audit_elasticsearch.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"listingreel-workers/internal/common/database"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
	"listingreel-workers/internal/selection"
)

// AuditDocument captures one selection run for later inspection.
type AuditDocument struct {
	UserID    string             `json:"userId"`
	ProjectID string             `json:"projectId"`
	Template  string             `json:"template,omitempty"`
	NumClips  int                `json:"numClips"`
	Fallback  bool               `json:"fallback"`
	URIs      []string           `json:"uris"`
	Sequence  selection.Sequence `json:"sequence,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// ElasticsearchAuditSink indexes selection audit documents.
type ElasticsearchAuditSink struct {
	es    *database.ElasticsearchClient
	log   logger.Logger
	index string
}

func NewElasticsearchAuditSink(es *database.ElasticsearchClient, log logger.Logger, index string) *ElasticsearchAuditSink {
	return &ElasticsearchAuditSink{
		es:    es,
		log:   log.WithFields(map[string]interface{}{"component": "audit_sink"}),
		index: index,
	}
}

// Record indexes one audit document. Failures are logged but not fatal;
// auditing never blocks a selection result.
func (s *ElasticsearchAuditSink) Record(ctx context.Context, session models.Session, template string, numClips int, result *selection.Result) {
	doc := AuditDocument{
		UserID:    session.UserID,
		ProjectID: session.ProjectID,
		Template:  template,
		NumClips:  numClips,
		Fallback:  result.Fallback,
		URIs:      result.URIs,
		Sequence:  result.Sequence,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.log.Error("Failed to encode audit document", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	docID := fmt.Sprintf("%s-%s-%s", session.UserID, session.ProjectID, uuid.New().String())
	if err := s.es.Index(ctx, s.index, docID, body); err != nil {
		s.log.Error("Failed to index audit document", map[string]interface{}{
			"index": s.index,
			"docId": docID,
			"error": err.Error(),
		})
	}
}
