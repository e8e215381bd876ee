package scene

// SyncResult lists the entities touched by Sync.
type SyncResult struct {
	Added    []string
	Updated  []string
	Resynced []string
	Removed  []string
}

// Changed reports whether Sync modified the store.
func (r SyncResult) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Resynced)+len(r.Removed) > 0
}

// Sync brings the store in line with doc, emitting the minimum set of
// notifications: changed values are written, new lights added and missing
// ones removed. A light that lost an input attribute is replaced wholesale,
// keeping the engine's last derived values since a file need not carry them.
func (s *Store) Sync(doc *Document) (SyncResult, error) {
	var res SyncResult
	want := make(map[string]struct{}, len(doc.Lights))

	for _, l := range doc.Lights {
		want[l.ID] = struct{}{}
		attrs, err := NormalizeAll(l.Attributes)
		if err != nil {
			return res, err
		}

		cur, ok := s.Read(l.ID)
		if !ok {
			if err := s.Add(l.ID, l.Name, attrs); err != nil {
				return res, err
			}
			res.Added = append(res.Added, l.ID)
			continue
		}

		s.setName(l.ID, l.Name)

		removed := false
		for name := range cur {
			if _, ok := attrs[name]; !ok && !IsDerived(name) {
				removed = true
				break
			}
		}
		if removed {
			for name, v := range cur {
				if _, ok := attrs[name]; !ok && IsDerived(name) {
					attrs[name] = v
				}
			}
			if err := s.Replace(l.ID, attrs); err != nil {
				return res, err
			}
			res.Resynced = append(res.Resynced, l.ID)
			continue
		}

		changed := Attributes{}
		for name, v := range attrs {
			if !cur.Equal(attrs, name) {
				changed[name] = v
			}
		}
		if len(changed) == 0 {
			continue
		}
		if err := s.Write(l.ID, changed); err != nil {
			return res, err
		}
		res.Updated = append(res.Updated, l.ID)
	}

	for _, id := range s.IDs() {
		if _, ok := want[id]; !ok && s.Remove(id) {
			res.Removed = append(res.Removed, id)
		}
	}
	return res, nil
}

func (s *Store) setName(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; ok {
		s.names[id] = name
	}
}
