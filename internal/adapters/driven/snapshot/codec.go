package snapshot

import (
	"fmt"

	"github.com/oarkflow/json"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// Encode serialises a snapshot.
func Encode(s *domain.IndexSnapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot. Undecodable or structurally
// invalid data is reported as domain.ErrSnapshotCorrupt.
func Decode(data []byte) (*domain.IndexSnapshot, error) {
	var s domain.IndexSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotCorrupt, err)
	}
	if s.InvertedIndex == nil {
		s.InvertedIndex = domain.InvertedIndex{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
