package introspect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewtrack/modelgen/schema"
)

// ErrSchemaUnavailable marks the fatal error class: the schema source could
// not be reached or read. Nothing downstream runs when this is returned.
var ErrSchemaUnavailable = errors.New("schema source unavailable")

// DefaultTimeout bounds a full extraction pass.
const DefaultTimeout = 30 * time.Second

// Introspector extracts a deterministic schema snapshot from Postgres.
// Every query carries an ORDER BY so table and column ordering is stable
// across runs; output diffing depends on that.
type Introspector struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func New(pool *pgxpool.Pool) *Introspector {
	return &Introspector{pool: pool, timeout: DefaultTimeout}
}

// WithTimeout overrides the extraction deadline.
func (i *Introspector) WithTimeout(d time.Duration) *Introspector {
	i.timeout = d
	return i
}

// Extract reads tables, columns (with enum values, defaults and comments)
// and foreign keys in one pass.
func (i *Introspector) Extract(ctx context.Context) (*schema.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	tableNames, err := i.tableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", ErrSchemaUnavailable, err)
	}

	enums, err := i.enumValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading enum types: %v", ErrSchemaUnavailable, err)
	}

	snap := &schema.Snapshot{}
	for _, name := range tableNames {
		columns, err := i.columns(ctx, name, enums)
		if err != nil {
			return nil, fmt.Errorf("%w: columns for table %s: %v", ErrSchemaUnavailable, name, err)
		}
		snap.Tables = append(snap.Tables, schema.TableSchema{
			Name:    name,
			Columns: columns,
		})

		fks, err := i.foreignKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: foreign keys for table %s: %v", ErrSchemaUnavailable, name, err)
		}
		snap.ForeignKeys = append(snap.ForeignKeys, fks...)
	}

	return snap, nil
}

func (i *Introspector) tableNames(ctx context.Context) ([]string, error) {
	query := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %v", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// enumValues maps enum type name -> ordered labels.
func (i *Introspector) enumValues(ctx context.Context) (map[string][]string, error) {
	query := `
	SELECT t.typname, e.enumlabel
	FROM pg_type t
	JOIN pg_enum e ON e.enumtypid = t.oid
	ORDER BY t.typname, e.enumsortorder;
	`

	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying enums: %v", err)
	}
	defer rows.Close()

	enums := map[string][]string{}
	for rows.Next() {
		var typeName, label string
		if err := rows.Scan(&typeName, &label); err != nil {
			return nil, fmt.Errorf("scanning enum label: %v", err)
		}
		enums[typeName] = append(enums[typeName], label)
	}
	return enums, rows.Err()
}

func (i *Introspector) columns(ctx context.Context, tableName string, enums map[string][]string) ([]schema.Column, error) {
	query := `
	SELECT
		c.column_name,
		c.data_type,
		c.udt_name,
		(c.is_nullable = 'YES') AS is_nullable,
		c.column_default,
		pgd.description
	FROM information_schema.columns c
	LEFT JOIN pg_catalog.pg_statio_all_tables st
		ON st.schemaname = c.table_schema AND st.relname = c.table_name
	LEFT JOIN pg_catalog.pg_description pgd
		ON pgd.objoid = st.relid AND pgd.objsubid = c.ordinal_position
	WHERE c.table_schema = 'public' AND c.table_name = $1
	ORDER BY c.ordinal_position;
	`

	rows, err := i.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %v", err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			col      schema.Column
			dataType string
			udtName  string
			comment  *string
		)
		if err := rows.Scan(&col.Name, &dataType, &udtName, &col.Nullable, &col.Default, &comment); err != nil {
			return nil, fmt.Errorf("scanning column: %v", err)
		}
		col.Type = strings.ToLower(dataType)
		if comment != nil {
			col.Comment = *comment
		}
		if col.Type == "user-defined" {
			if values, ok := enums[udtName]; ok {
				col.EnumValues = values
				col.Type = udtName
			}
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (i *Introspector) foreignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
	SELECT
		kcu.column_name,
		ccu.table_name AS foreign_table_name,
		ccu.column_name AS foreign_column_name
	FROM information_schema.table_constraints AS tc
	JOIN information_schema.key_column_usage AS kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage AS ccu
		ON ccu.constraint_name = tc.constraint_name
		AND ccu.table_schema = tc.table_schema
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = 'public'
		AND tc.table_name = $1
	ORDER BY kcu.column_name;
	`

	rows, err := i.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys: %v", err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		fk := schema.ForeignKey{Table: tableName}
		if err := rows.Scan(&fk.Column, &fk.ReferencesTable, &fk.ReferencesColumn); err != nil {
			return nil, fmt.Errorf("scanning foreign key: %v", err)
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
