package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// QuestionPair is a single practice question with its answer, as returned by
// the Notes service.
type QuestionPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionSet is the durable per-document cache entry of generated practice
// questions. At most one live row exists per document; regeneration
// overwrites the row rather than appending.
type QuestionSet struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	DocumentID  uint           `json:"document_id" gorm:"not null;uniqueIndex"`
	Pairs       datatypes.JSON `json:"pairs" gorm:"type:jsonb;not null"`
	GeneratedAt time.Time      `json:"generated_at" gorm:"not null"`

	Document *Document `json:"-" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

func (QuestionSet) TableName() string {
	return "question_sets"
}

func (q *QuestionSet) SetPairs(pairs []QuestionPair) error {
	data, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("failed to marshal question pairs: %w", err)
	}
	q.Pairs = datatypes.JSON(data)
	return nil
}

func (q *QuestionSet) GetPairs() ([]QuestionPair, error) {
	if len(q.Pairs) == 0 {
		return nil, nil
	}
	var pairs []QuestionPair
	if err := json.Unmarshal(q.Pairs, &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question pairs: %w", err)
	}
	return pairs, nil
}
