package gtfsdb

import (
	"context"
	"fmt"
)

// ListAgencies returns every agency ordered by id
func (c *Client) ListAgencies(ctx context.Context) ([]Agency, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT agency_id, agency_name, agency_url, agency_timezone,
			COALESCE(agency_lang, ''), COALESCE(agency_phone, '')
		FROM agency
		ORDER BY agency_id
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying agencies: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var agencies []Agency
	for rows.Next() {
		var a Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.URL, &a.Timezone, &a.Lang, &a.Phone); err != nil {
			return nil, fmt.Errorf("error scanning agency: %w", err)
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

// GetImportMetadata returns the metadata of the last import, or sql.ErrNoRows when
// nothing has been imported yet
func (c *Client) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	var m ImportMetadata
	err := c.DB.QueryRowContext(ctx,
		`SELECT file_hash, file_source, import_time FROM import_metadata WHERE id = 1`,
	).Scan(&m.FileHash, &m.FileSource, &m.ImportTime)
	return m, err
}
