// internal/common/gcp/vision.go
package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"listingreel-workers/internal/common/logger"
)

// ImageLabel is a single label detected on an image.
type ImageLabel struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Labeler detects content labels for images stored in GCS.
type Labeler interface {
	DetectLabels(ctx context.Context, uri string) ([]ImageLabel, error)
	Close() error
}

type labelerService struct {
	log       logger.Logger
	client    *vision.ImageAnnotatorClient
	maxLabels int
}

// NewLabeler creates a Vision-backed Labeler.
func NewLabeler(ctx context.Context, log logger.Logger, maxLabels int) (Labeler, error) {
	if maxLabels <= 0 {
		maxLabels = 20
	}

	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &labelerService{
		log:       log.WithFields(map[string]interface{}{"service": "gcp.Labeler"}),
		client:    client,
		maxLabels: maxLabels,
	}, nil
}

func (s *labelerService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// DetectLabels annotates a gs:// image and returns its labels ordered by score.
func (s *labelerService) DetectLabels(ctx context.Context, uri string) ([]ImageLabel, error) {
	if !strings.HasPrefix(uri, "gs://") {
		return nil, fmt.Errorf("image uri must be gs://... got %q", uri)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{
					Source: &visionpb.ImageSource{ImageUri: uri},
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(s.maxLabels)},
				},
			},
		},
	}

	resp, err := s.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	labels := make([]ImageLabel, 0, len(r0.LabelAnnotations))
	for _, a := range r0.LabelAnnotations {
		if a == nil || strings.TrimSpace(a.Description) == "" {
			continue
		}
		labels = append(labels, ImageLabel{
			Description: a.Description,
			Score:       float64(a.Score),
		})
	}

	s.log.Debug("Detected image labels", map[string]interface{}{
		"uri":    uri,
		"labels": len(labels),
	})

	return labels, nil
}
