// Package history provides access to the interactions table for
// recording and querying past decision/execution round trips.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-assist/internal/assist"
)

// ErrNotFound indicates the requested interaction does not exist.
var ErrNotFound = errors.New("history: interaction not found")

// Interaction is one recorded decision/execution round trip.
type Interaction struct {
	ID          string                `json:"id"`
	Mode        string                `json:"mode"`
	RequestText string                `json:"request_text"`
	Message     string                `json:"message"`
	Actions     []assist.Action       `json:"actions,omitempty"`
	Results     []assist.ActionResult `json:"results,omitempty"`
	Total       int                   `json:"total"`
	Successful  int                   `json:"successful"`
	Failed      int                   `json:"failed"`
	SuccessRate float64               `json:"success_rate"`
	DurationMS  int64                 `json:"duration_ms"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Filter controls which interactions to return.
type Filter struct {
	Mode   string // optional: filter by mode (assistant, supervisor, autonomic)
	Limit  int    // default 50, max 200
	Offset int    // pagination offset
}

// ListResult contains the paginated interaction results.
type ListResult struct {
	Interactions []Interaction `json:"interactions"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// Repository defines the interface for interaction log operations.
type Repository interface {
	Create(ctx context.Context, interaction *Interaction) error
	Get(ctx context.Context, id string) (*Interaction, error)
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// SQLiteRepository stores interactions in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new interaction repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new interaction. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, interaction *Interaction) error {
	if interaction.ID == "" {
		interaction.ID = "ixn-" + uuid.NewString()[:8]
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}

	actionsJSON, err := marshalNullable(interaction.Actions)
	if err != nil {
		return fmt.Errorf("marshalling actions: %w", err)
	}
	resultsJSON, err := marshalNullable(interaction.Results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO interactions (id, mode, request_text, message, actions, results,
		                           total, successful, failed, success_rate, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		interaction.ID, interaction.Mode, interaction.RequestText, interaction.Message,
		actionsJSON, resultsJSON,
		interaction.Total, interaction.Successful, interaction.Failed,
		interaction.SuccessRate, interaction.DurationMS,
		interaction.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}

	return nil
}

// marshalNullable returns nil for empty slices, or the JSON string otherwise.
// Used for nullable TEXT columns in SQLite.
func marshalNullable(v any) (any, error) {
	switch t := v.(type) {
	case []assist.Action:
		if len(t) == 0 {
			return nil, nil
		}
	case []assist.ActionResult:
		if len(t) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Get returns a single interaction by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Interaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, mode, request_text, message, actions, results,
		        total, successful, failed, success_rate, duration_ms, created_at
		 FROM interactions WHERE id = ?`, id)

	interaction, err := scanInteraction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return interaction, nil
}

// List returns interactions matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for interaction queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, filter.Mode)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE clause is built from parameterised conditions (? placeholders) — no user input in SQL string.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM interactions %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting interactions: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		`SELECT id, mode, request_text, message, actions, results,
		        total, successful, failed, success_rate, duration_ms, created_at
		 FROM interactions %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		interaction, err := scanInteraction(rows.Scan)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, *interaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}

	if interactions == nil {
		interactions = []Interaction{}
	}

	return &ListResult{
		Interactions: interactions,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

// Prune removes the oldest interactions so that at most keep rows remain.
// Returns the number of rows deleted. keep <= 0 disables pruning.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM interactions WHERE id NOT IN (
		    SELECT id FROM interactions ORDER BY created_at DESC, id DESC LIMIT ?
		 )`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning interactions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned interactions: %w", err)
	}
	return deleted, nil
}

// scanInteraction scans one interaction row via the given scan function.
func scanInteraction(scan func(dest ...any) error) (*Interaction, error) {
	var interaction Interaction
	var actionsJSON, resultsJSON sql.NullString
	var createdAt string

	err := scan(&interaction.ID, &interaction.Mode, &interaction.RequestText, &interaction.Message,
		&actionsJSON, &resultsJSON,
		&interaction.Total, &interaction.Successful, &interaction.Failed,
		&interaction.SuccessRate, &interaction.DurationMS, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning interaction: %w", err)
	}

	if actionsJSON.Valid && actionsJSON.String != "" {
		if err := json.Unmarshal([]byte(actionsJSON.String), &interaction.Actions); err != nil {
			return nil, fmt.Errorf("unmarshalling actions: %w", err)
		}
	}
	if resultsJSON.Valid && resultsJSON.String != "" {
		if err := json.Unmarshal([]byte(resultsJSON.String), &interaction.Results); err != nil {
			return nil, fmt.Errorf("unmarshalling results: %w", err)
		}
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing interaction timestamp %q: %w", createdAt, err)
	}
	interaction.CreatedAt = t

	return &interaction, nil
}
