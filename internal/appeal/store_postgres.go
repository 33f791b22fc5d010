package appeal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pcnappeal/internal/rules"
	id "pcnappeal/pkg/domain"
)

// PostgresStore is the production CaseStore. Facts and defence rankings are
// stored as JSONB; the version column backs the compare-and-swap in Update.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// caseDocument is the JSONB shape holding everything that does not need its
// own column. Columns are reserved for fields the store queries or guards on.
type caseDocument struct {
	Facts                 rules.Facts     `json:"facts"`
	Ticket                TicketDetails   `json:"ticket"`
	ContraventionCategory string          `json:"contravention_category,omitempty"`
	PrimaryDefence        *rules.Defence  `json:"primary_defence,omitempty"`
	SupportingDefences    []rules.Defence `json:"supporting_defences,omitempty"`
	GeneralDefences       []string        `json:"general_defences,omitempty"`
	LetterText            string          `json:"letter_text,omitempty"`
}

func (s *PostgresStore) Create(ctx context.Context, c Case) error {
	doc, err := json.Marshal(documentOf(c))
	if err != nil {
		return fmt.Errorf("marshal case document: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO appeal_cases (id, user_id, state, payment_ref, document, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID.String(), c.UserID.String(), string(c.State), c.PaymentRef, doc, c.CreatedAt, c.UpdatedAt, c.Version,
	)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, caseID id.CaseID) (Case, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, state, payment_ref, document, created_at, updated_at, version
		FROM appeal_cases WHERE id = $1`,
		caseID.String(),
	)
	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, fmt.Errorf("select case: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Case, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, state, payment_ref, document, created_at, updated_at, version
		FROM appeal_cases WHERE user_id = $1 ORDER BY created_at DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes the case only if the stored version still matches
// expectedVersion, incrementing it in the same statement. A zero-row result
// means either the case is gone or another writer got there first.
func (s *PostgresStore) Update(ctx context.Context, c Case, expectedVersion int64) (Case, error) {
	doc, err := json.Marshal(documentOf(c))
	if err != nil {
		return Case{}, fmt.Errorf("marshal case document: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE appeal_cases
		SET state = $1, payment_ref = $2, document = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6`,
		string(c.State), c.PaymentRef, doc, c.UpdatedAt, c.ID.String(), expectedVersion,
	)
	if err != nil {
		return Case{}, fmt.Errorf("update case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appeal_cases WHERE id = $1)`, c.ID.String()).Scan(&exists); err != nil {
			return Case{}, fmt.Errorf("check case existence: %w", err)
		}
		if !exists {
			return Case{}, ErrNotFound
		}
		return Case{}, ErrVersionConflict
	}
	c.Version = expectedVersion + 1
	return c, nil
}

func documentOf(c Case) caseDocument {
	return caseDocument{
		Facts:                 c.Facts,
		Ticket:                c.Ticket,
		ContraventionCategory: c.ContraventionCategory,
		PrimaryDefence:        c.PrimaryDefence,
		SupportingDefences:    c.SupportingDefences,
		GeneralDefences:       c.GeneralDefences,
		LetterText:            c.LetterText,
	}
}

func scanCase(row pgx.Row) (Case, error) {
	var (
		c           Case
		rawCaseID   string
		rawUserID   string
		rawState    string
		rawDocument []byte
	)
	if err := row.Scan(&rawCaseID, &rawUserID, &rawState, &c.PaymentRef, &rawDocument, &c.CreatedAt, &c.UpdatedAt, &c.Version); err != nil {
		return Case{}, err
	}

	caseID, err := id.ParseCaseID(rawCaseID)
	if err != nil {
		return Case{}, fmt.Errorf("stored case id: %w", err)
	}
	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		return Case{}, fmt.Errorf("stored user id: %w", err)
	}

	var doc caseDocument
	if err := json.Unmarshal(rawDocument, &doc); err != nil {
		return Case{}, fmt.Errorf("unmarshal case document: %w", err)
	}

	c.ID = caseID
	c.UserID = userID
	c.State = State(rawState)
	c.Facts = doc.Facts
	c.Ticket = doc.Ticket
	c.ContraventionCategory = doc.ContraventionCategory
	c.PrimaryDefence = doc.PrimaryDefence
	c.SupportingDefences = doc.SupportingDefences
	c.GeneralDefences = doc.GeneralDefences
	c.LetterText = doc.LetterText
	return c, nil
}
