package services

import (
	"github.com/alphabatem/common/context"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/shared"
)

// KnowledgeService serves the public knowledge base. The listing is readable
// anonymously; authenticated callers get the same data flagged as such.
type KnowledgeService struct {
	context.DefaultService

	sqlSvc *SqlService
}

const KNOWLEDGE_SVC = "knowledge_svc"

const defaultKnowledgeLimit = 5

func (svc KnowledgeService) Id() string {
	return KNOWLEDGE_SVC
}

func (svc *KnowledgeService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	return nil
}

func (svc *KnowledgeService) GetEntries(limit int, authenticated bool) (*dto.KnowledgeListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultKnowledgeLimit
	}

	entries, err := svc.sqlSvc.LatestKnowledgeEntries(limit)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	out := make([]dto.KnowledgeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.KnowledgeEntryResponse{
			ID:        e.ID,
			Title:     e.Title,
			Content:   e.Content,
			Tags:      e.Tags,
			CreatedAt: e.CreatedAt,
		})
	}

	return &dto.KnowledgeListResponse{
		Entries:       out,
		Count:         len(out),
		Authenticated: authenticated,
	}, nil
}
