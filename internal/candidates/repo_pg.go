package candidates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const candidateColumns = `id, first_name, last_name, email, phone, address, linkedin, portfolio, created_at, updated_at`

// searchColumns whitelists the columns autocomplete may touch.
var searchColumns = map[SuggestField]struct{ table, column string }{
	FieldInstitution: {"educations", "institution"},
	FieldCompany:     {"experiences", "company"},
}

// Create inserts the candidate and its nested rows in one transaction.
func (r *PGRepo) Create(ctx context.Context, c Candidate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO candidates (`+candidateColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		nullableString(c.Address),
		nullableString(c.LinkedIn),
		nullableString(c.Portfolio),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailConflict
		}
		return err
	}

	for i, e := range c.Educations {
		_, err = tx.ExecContext(ctx, `
INSERT INTO educations (id, candidate_id, sort_order, institution, degree, field_of_study, start_date, end_date, current, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID, c.ID, i, e.Institution, e.Degree, e.FieldOfStudy,
			e.StartDate, nullableTime(e.EndDate), e.Current, nullableString(e.Description),
		)
		if err != nil {
			return fmt.Errorf("insert education %d: %w", i, err)
		}
	}

	for i, e := range c.Experiences {
		_, err = tx.ExecContext(ctx, `
INSERT INTO experiences (id, candidate_id, sort_order, company, position, description, start_date, end_date, current)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, c.ID, i, e.Company, e.Position, nullableString(e.Description),
			e.StartDate, nullableTime(e.EndDate), e.Current,
		)
		if err != nil {
			return fmt.Errorf("insert experience %d: %w", i, err)
		}
	}

	for i, d := range c.Documents {
		_, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, candidate_id, sort_order, original_name, file_name, mime_type, detected_mime_type, size_bytes, page_count, storage_provider, storage_key, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			d.ID, c.ID, i, d.OriginalName, d.FileName, d.MimeType, nullableString(d.DetectedMimeType),
			d.SizeBytes, nullableInt(d.PageCount), d.StorageProvider, d.StorageKey, d.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", d.OriginalName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailConflict
		}
		return err
	}
	return nil
}

// FindByEmail returns the candidate row registered with email, ignoring case.
func (r *PGRepo) FindByEmail(ctx context.Context, email string) (Candidate, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+candidateColumns+`
FROM candidates
WHERE lower(email) = lower($1)
LIMIT 1`, strings.TrimSpace(email))
	return scanCandidate(row)
}

// GetByID returns the candidate with its educations, experiences and documents.
func (r *PGRepo) GetByID(ctx context.Context, candidateID string) (Candidate, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+candidateColumns+`
FROM candidates
WHERE id = $1
LIMIT 1`, candidateID)
	c, err := scanCandidate(row)
	if err != nil {
		return Candidate{}, err
	}
	if c.Educations, err = r.educations(ctx, c.ID); err != nil {
		return Candidate{}, err
	}
	if c.Experiences, err = r.experiences(ctx, c.ID); err != nil {
		return Candidate{}, err
	}
	if c.Documents, err = r.documents(ctx, c.ID); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// List returns candidate rows newest first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Candidate, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM candidates`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, `
SELECT `+candidateColumns+`
FROM candidates
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Candidate, 0, limit)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SearchDistinct groups matches by their lowercase form and keeps the smallest
// spelling of each group.
func (r *PGRepo) SearchDistinct(ctx context.Context, field SuggestField, query string, limit int) ([]string, error) {
	target, ok := searchColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported search field %q", field)
	}
	q := fmt.Sprintf(`
SELECT min(%[1]s)
FROM %[2]s
WHERE %[1]s ILIKE $1 ESCAPE '\'
GROUP BY lower(%[1]s)
ORDER BY lower(%[1]s)
LIMIT $2`, target.column, target.table)

	rows, err := r.DB.QueryContext(ctx, q, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Delete removes a candidate; nested rows go with it through cascading keys.
func (r *PGRepo) Delete(ctx context.Context, candidateID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, candidateID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) educations(ctx context.Context, candidateID string) ([]Education, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, institution, degree, field_of_study, start_date, end_date, current, description
FROM educations
WHERE candidate_id = $1
ORDER BY sort_order`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Education
	for rows.Next() {
		e := Education{CandidateID: candidateID}
		var end sql.NullTime
		var desc sql.NullString
		if err := rows.Scan(&e.ID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.StartDate, &end, &e.Current, &desc); err != nil {
			return nil, err
		}
		e.EndDate = timePtr(end)
		e.Description = desc.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) experiences(ctx context.Context, candidateID string) ([]Experience, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, company, position, description, start_date, end_date, current
FROM experiences
WHERE candidate_id = $1
ORDER BY sort_order`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Experience
	for rows.Next() {
		e := Experience{CandidateID: candidateID}
		var end sql.NullTime
		var desc sql.NullString
		if err := rows.Scan(&e.ID, &e.Company, &e.Position, &desc, &e.StartDate, &end, &e.Current); err != nil {
			return nil, err
		}
		e.EndDate = timePtr(end)
		e.Description = desc.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) documents(ctx context.Context, candidateID string) ([]documents.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, original_name, file_name, mime_type, detected_mime_type, size_bytes, page_count, storage_provider, storage_key, uploaded_at
FROM documents
WHERE candidate_id = $1
ORDER BY sort_order`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []documents.Document
	for rows.Next() {
		d := documents.Document{CandidateID: candidateID}
		var detected sql.NullString
		var pages sql.NullInt64
		if err := rows.Scan(&d.ID, &d.OriginalName, &d.FileName, &d.MimeType, &detected, &d.SizeBytes, &pages, &d.StorageProvider, &d.StorageKey, &d.UploadedAt); err != nil {
			return nil, err
		}
		d.DetectedMimeType = detected.String
		d.PageCount = int(pages.Int64)
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	var address, linkedIn, portfolio sql.NullString
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&address,
		&linkedIn,
		&portfolio,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrNotFound
		}
		return Candidate{}, err
	}
	c.Address = address.String
	c.LinkedIn = linkedIn.String
	c.Portfolio = portfolio.String
	return c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	return &t
}
