package usecase

// uniqueIDs убирает повторы, сохраняя порядок первого появления.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// missingIDs возвращает идентификаторы из requested, которых нет среди found.
// Порядок — порядок первого появления в requested, без повторов.
func missingIDs[T any](requested []int64, found []T, idOf func(T) int64) []int64 {
	present := make(map[int64]struct{}, len(found))
	for _, f := range found {
		present[idOf(f)] = struct{}{}
	}

	var missing []int64
	for _, id := range uniqueIDs(requested) {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// missingSet накапливает ненайденные идентификаторы без повторов в порядке появления.
type missingSet struct {
	ids  []int64
	seen map[int64]struct{}
}

func newMissingSet() *missingSet {
	return &missingSet{seen: make(map[int64]struct{})}
}

func (m *missingSet) add(id int64) {
	if _, ok := m.seen[id]; ok {
		return
	}
	m.seen[id] = struct{}{}
	m.ids = append(m.ids, id)
}

func (m *missingSet) empty() bool {
	return len(m.ids) == 0
}
