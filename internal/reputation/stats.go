package reputation

// StoreStats summarizes the contents of the reputation store.
type StoreStats struct {
	SignaturesByRisk  map[string]int
	FlaggedCount      int
	SignaturesTotal   int
	ThreatSigsByCat   map[string]int
	ThreatSigsTotal   int
	ScanLogTotal      int
}

// Stats aggregates counts across all three primary tables.
func (s *Store) Stats() (StoreStats, error) {
	stats := StoreStats{
		SignaturesByRisk: make(map[string]int),
		ThreatSigsByCat:  make(map[string]int),
	}

	rows, err := s.db.Query("SELECT risk_level, flagged, COUNT(*) FROM signatures GROUP BY risk_level, flagged")
	if err != nil {
		return stats, err
	}
	for rows.Next() {
		var risk string
		var flagged, count int
		if err := rows.Scan(&risk, &flagged, &count); err != nil {
			rows.Close()
			return stats, err
		}
		stats.SignaturesByRisk[risk] += count
		stats.SignaturesTotal += count
		if flagged != 0 {
			stats.FlaggedCount += count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	catRows, err := s.db.Query("SELECT category, COUNT(*) FROM threat_signatures GROUP BY category")
	if err != nil {
		return stats, err
	}
	for catRows.Next() {
		var cat string
		var count int
		if err := catRows.Scan(&cat, &count); err != nil {
			catRows.Close()
			return stats, err
		}
		stats.ThreatSigsByCat[cat] = count
		stats.ThreatSigsTotal += count
	}
	catRows.Close()
	if err := catRows.Err(); err != nil {
		return stats, err
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM scan_log").Scan(&stats.ScanLogTotal); err != nil {
		return stats, err
	}

	return stats, nil
}
