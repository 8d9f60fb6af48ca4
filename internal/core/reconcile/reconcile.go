package reconcile

import (
	"github.com/lucenz/chartgen/internal/core/docindex"
	"github.com/lucenz/chartgen/internal/core/model"
)

type Action string

const (
	// Create allocates a fresh sequence slot for a never-seen title.
	Create Action = "create"
	// Update reuses the slot of an existing title; content is replaced and
	// the artifact regenerated under the same identifier.
	Update Action = "update"
)

// Decision classifies one candidate document against the existing index.
type Decision struct {
	Doc      model.CandidateDocument
	Action   Action
	Sequence int
	// PriorFilename is the slot being replaced on Update, "" on Create.
	PriorFilename string
}

// Plan reconciles oracle candidates against the scanned index. Title is the
// sole de-duplication key: a known title keeps its sequence number, a new one
// gets the next number above the high-water mark. Sequence numbers are stable
// external references and are never reused or reordered. Reconciliation is
// total; every candidate is classified.
func Plan(index docindex.Index, candidates []model.CandidateDocument) []Decision {
	decisions := make([]Decision, 0, len(candidates))
	nextSeq := index.MaxSequence

	for _, doc := range candidates {
		if entry, ok := index.Entries[doc.TitleHint]; ok {
			decisions = append(decisions, Decision{
				Doc:           doc,
				Action:        Update,
				Sequence:      entry.Sequence,
				PriorFilename: entry.Filename,
			})
			continue
		}

		nextSeq++
		decisions = append(decisions, Decision{
			Doc:      doc,
			Action:   Create,
			Sequence: nextSeq,
		})
	}

	return decisions
}
