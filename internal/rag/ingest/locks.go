package ingest

import (
	"fmt"
	"sync"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

// rebuildLocks serializes rebuilds per logical document. Keyed on the ingest
// identity rather than the document id since a brand-new document has no id
// until the rebuild assigns one.
var rebuildLocks sync.Map

func rebuildKey(doc ragModel.Document) string {
	return fmt.Sprintf("%d:%s", doc.SourceId, doc.IngestKey())
}

func lockDocument(key string) func() {
	entry, _ := rebuildLocks.LoadOrStore(key, &sync.Mutex{})
	mu := entry.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
