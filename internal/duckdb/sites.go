package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/popgenio/gldist/internal/geno"
	"github.com/popgenio/gldist/internal/pos"
)

// SiteSummary is one row of the site_summary table.
type SiteSummary struct {
	Site       int64
	Distance   float64 // +Inf at chromosome starts
	MeanHomRef float64
	MeanHet    float64
	MeanHomAlt float64
	NMissing   int32
}

// Summarize builds one SiteSummary per site from a loaded genotype matrix
// and its matching distance array.
func Summarize(m *geno.Matrix, d pos.Distances) ([]SiteSummary, error) {
	if m.Sites() != d.Sites() {
		return nil, fmt.Errorf("site count mismatch: %d genotype sites, %d position sites",
			m.Sites(), d.Sites())
	}

	rows := make([]SiteSummary, 0, m.Sites())
	for s := 1; s <= m.Sites(); s++ {
		st := m.Stats(s)
		rows = append(rows, SiteSummary{
			Site:       int64(s),
			Distance:   d[s],
			MeanHomRef: st.MeanProb[0],
			MeanHet:    st.MeanProb[1],
			MeanHomAlt: st.MeanProb[2],
			NMissing:   int32(st.NMissing),
		})
	}
	return rows, nil
}

// WriteSiteSummaries batch-inserts rows using the Appender API.
func (s *Store) WriteSiteSummaries(rows []SiteSummary) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "site_summary")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		if err := appender.AppendRow(
			r.Site, r.Distance,
			r.MeanHomRef, r.MeanHet, r.MeanHomAlt,
			r.NMissing,
		); err != nil {
			return fmt.Errorf("append site summary: %w", err)
		}
	}

	return appender.Flush()
}

// ClearSiteSummaries removes all stored site summaries.
func (s *Store) ClearSiteSummaries() error {
	_, err := s.db.Exec("DELETE FROM site_summary")
	return err
}

// SiteCount returns the number of stored site summaries.
func (s *Store) SiteCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM site_summary").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return n, nil
}

// LookupSite returns the stored summary for one site, or nil if absent.
func (s *Store) LookupSite(site int64) (*SiteSummary, error) {
	var r SiteSummary
	err := s.db.QueryRow(`SELECT site, distance, mean_hom_ref, mean_het, mean_hom_alt, n_missing
		FROM site_summary WHERE site=?`, site).
		Scan(&r.Site, &r.Distance, &r.MeanHomRef, &r.MeanHet, &r.MeanHomAlt, &r.NMissing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query site: %w", err)
	}
	return &r, nil
}
