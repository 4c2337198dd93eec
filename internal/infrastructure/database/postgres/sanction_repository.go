package postgres

import (
	"context"
	"log/slog"

	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/pkg/apperrors"
)

// SanctionDocumentRepository keeps rendered sanction letters in the
// database so any instance can serve them.
type SanctionDocumentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ sanction.Store = (*SanctionDocumentRepository)(nil)

func NewSanctionDocumentRepository(db DBPool, logger *slog.Logger) *SanctionDocumentRepository {
	if db == nil {
		panic("DBPool cannot be nil for SanctionDocumentRepository")
	}
	return &SanctionDocumentRepository{db: db, logger: logger.With("component", "SanctionDocumentRepository")}
}

func (r *SanctionDocumentRepository) Put(ctx context.Context, ref, content string) error {
	if ref == "" {
		return apperrors.NewValidationError("ref", "document reference cannot be empty")
	}

	logCtx := r.logger.With(slog.String("operation", "Put"), slog.String("ref", ref))

	query := `
        INSERT INTO sanction_documents (ref, content, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (ref) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, ref, content); err != nil {
		return translateDBError(err, logCtx)
	}

	logCtx.InfoContext(ctx, "Sanction document stored", slog.Int("bytes", len(content)))
	return nil
}

func (r *SanctionDocumentRepository) Get(ctx context.Context, ref string) (string, error) {
	logCtx := r.logger.With(slog.String("operation", "Get"), slog.String("ref", ref))

	var content string
	if err := r.db.QueryRow(ctx, `SELECT content FROM sanction_documents WHERE ref = $1`, ref).Scan(&content); err != nil {
		return "", translateDBError(err, logCtx)
	}
	return content, nil
}
