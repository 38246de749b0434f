package geo

import (
	"sync"

	"github.com/dhconnelly/rtreego"
)

// pointTolerance gives each indexed point a tiny bounding box so it
// satisfies the rtreego.Spatial interface.
const pointTolerance = 0.0001

// kmPerDegree approximates one degree of latitude. The rtree search box is
// a coarse prefilter only; callers apply the exact haversine cut afterwards.
const kmPerDegree = 111.0

type requestEntry struct {
	id    int64
	where rtreego.Point
}

func (e *requestEntry) Bounds() rtreego.Rect {
	return e.where.ToRect(pointTolerance)
}

// RequestIndex is an in-memory spatial index over open service requests.
// It is rebuilt from the store at boot and maintained on create/close.
type RequestIndex struct {
	mu      sync.Mutex
	tree    *rtreego.Rtree
	entries map[int64]*requestEntry
}

func NewRequestIndex() *RequestIndex {
	return &RequestIndex{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[int64]*requestEntry),
	}
}

// Insert indexes a request at the given point. Re-inserting an id moves it.
func (ix *RequestIndex) Insert(id int64, lat, lon float64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if prev, ok := ix.entries[id]; ok {
		ix.tree.Delete(prev)
	}
	entry := &requestEntry{id: id, where: rtreego.Point{lat, lon}}
	ix.entries[id] = entry
	ix.tree.Insert(entry)
}

// Remove drops a request from the index. Unknown ids are a no-op.
func (ix *RequestIndex) Remove(id int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	entry, ok := ix.entries[id]
	if !ok {
		return
	}
	ix.tree.Delete(entry)
	delete(ix.entries, id)
}

// Search returns the ids of indexed requests whose bounding box falls
// within radiusKm of the point. Results may include requests slightly
// beyond the radius; callers filter with DistanceKm.
func (ix *RequestIndex) Search(lat, lon, radiusKm float64) []int64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	center := rtreego.Point{lat, lon}
	hits := ix.tree.SearchIntersect(center.ToRect(radiusKm / kmPerDegree))
	ids := make([]int64, 0, len(hits))
	for _, hit := range hits {
		if entry, ok := hit.(*requestEntry); ok {
			ids = append(ids, entry.id)
		}
	}
	return ids
}
