package candidates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func sampleCandidate() Candidate {
	start := time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)
	return Candidate{
		ID:        "c1",
		FirstName: "Ana",
		LastName:  "Ruiz",
		Email:     "ana@example.com",
		Phone:     "600123456",
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
		Educations: []Education{{
			ID: "e1", Institution: "UPM", Degree: "MSc", FieldOfStudy: "AI", StartDate: start, Current: true,
		}},
		Experiences: []Experience{{
			ID: "x1", Company: "Acme", Position: "Engineer", StartDate: start, Current: true,
		}},
		Documents: []documents.Document{{
			ID: "d1", OriginalName: "cv.pdf", FileName: "1-abc.pdf", MimeType: "application/pdf",
			SizeBytes: 10, StorageProvider: "local", StorageKey: "candidates/c1/1-abc.pdf", UploadedAt: fixedNow,
		}},
	}
}

func TestPGRepoCreateInsertsEverythingInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	c := sampleCandidate()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").
		WithArgs(c.ID, c.FirstName, c.LastName, c.Email, c.Phone, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO educations \\(id, candidate_id, sort_order,").
		WithArgs("e1", "c1", 0, "UPM", "MSc", "AI", sqlmock.AnyArg(), nil, true, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO experiences \\(id, candidate_id, sort_order, company, position,").
		WithArgs("x1", "c1", 0, "Acme", "Engineer", nil, sqlmock.AnyArg(), nil, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO documents \\(id, candidate_id, sort_order,").
		WithArgs("d1", "c1", 0, "cv.pdf", "1-abc.pdf", "application/pdf", nil, int64(10), nil, "local", "candidates/c1/1-abc.pdf", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "candidates_email_lower_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleCandidate())
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateRollsBackOnNestedFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO educations").WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleCandidate())
	if err == nil || errors.Is(err, ErrEmailConflict) {
		t.Fatalf("expected plain insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoFindByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM candidates\\s+WHERE lower\\(email\\) = lower\\(\\$1\\)").
		WithArgs("ana@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByEmail(context.Background(), " ana@example.com "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDLoadsNestedRecords(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 6, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM candidates\\s+WHERE id = \\$1").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "address", "linkedin", "portfolio", "created_at", "updated_at"}).
			AddRow("c1", "Ana", "Ruiz", "ana@example.com", "600123456", nil, "https://linkedin.com/in/ana", nil, fixedNow, fixedNow))
	mock.ExpectQuery("FROM educations\\s+WHERE candidate_id = \\$1\\s+ORDER BY sort_order").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "institution", "degree", "field_of_study", "start_date", "end_date", "current", "description"}).
			AddRow("e1", "UPM", "MSc", "AI", start, end, false, nil))
	mock.ExpectQuery("(?s)SELECT id, company, position, .*FROM experiences\\s+WHERE candidate_id = \\$1\\s+ORDER BY sort_order").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "company", "position", "description", "start_date", "end_date", "current"}).
			AddRow("x1", "Acme", "Engineer", "Backend", start, nil, true))
	mock.ExpectQuery("FROM documents\\s+WHERE candidate_id = \\$1\\s+ORDER BY sort_order").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "original_name", "file_name", "mime_type", "detected_mime_type", "size_bytes", "page_count", "storage_provider", "storage_key", "uploaded_at"}).
			AddRow("d2", "z-cover.pdf", "1-def.pdf", "application/pdf", "application/pdf", int64(12), nil, "s3", "candidates/c1/1-def.pdf", fixedNow).
			AddRow("d1", "cv.pdf", "1-abc.pdf", "application/pdf", "application/pdf", int64(10), int64(2), "s3", "candidates/c1/1-abc.pdf", fixedNow))

	c, err := repo.GetByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Address != "" || c.LinkedIn != "https://linkedin.com/in/ana" {
		t.Fatalf("unexpected optional fields: %+v", c)
	}
	if len(c.Educations) != 1 || c.Educations[0].EndDate == nil || !c.Educations[0].EndDate.Equal(end) {
		t.Fatalf("unexpected educations: %+v", c.Educations)
	}
	if len(c.Experiences) != 1 || c.Experiences[0].EndDate != nil || c.Experiences[0].Position != "Engineer" {
		t.Fatalf("unexpected experiences: %+v", c.Experiences)
	}
	if len(c.Documents) != 2 || c.Documents[0].ID != "d2" || c.Documents[1].PageCount != 2 {
		t.Fatalf("unexpected documents: %+v", c.Documents)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListAppliesLimitAndOffset(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM candidates").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery("ORDER BY created_at DESC, id\\s+LIMIT \\$1 OFFSET \\$2").
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "address", "linkedin", "portfolio", "created_at", "updated_at"}).
			AddRow("c21", "Ana", "Ruiz", "ana@example.com", "600123456", nil, nil, nil, fixedNow, fixedNow))

	items, total, err := repo.List(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 21 || len(items) != 1 || items[0].ID != "c21" {
		t.Fatalf("unexpected page: total=%d items=%+v", total, items)
	}
}

func TestPGRepoSearchDistinctEscapesWildcards(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT min\\(company\\)\\s+FROM experiences").
		WithArgs(`%50\%\_off%`, 10).
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow("50%_off Ltd"))

	got, err := repo.SearchDistinct(context.Background(), FieldCompany, "50%_off", 10)
	if err != nil {
		t.Fatalf("SearchDistinct: %v", err)
	}
	if len(got) != 1 || got[0] != "50%_off Ltd" {
		t.Fatalf("unexpected result %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSearchDistinctRejectsUnknownField(t *testing.T) {
	repo, _ := newMockRepo(t)
	if _, err := repo.SearchDistinct(context.Background(), SuggestField("email"), "ana", 10); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestPGRepoDeleteMissingCandidate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM candidates").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
