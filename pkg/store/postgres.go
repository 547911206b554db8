package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
)

// PostgresConfig carries the connection parameters read from the
// environment. PoolSize is clamped to [5, DB_POOL_SIZE] by NewPostgres,
// matching the concurrency model's timeout section.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	PoolSize int32
}

// Postgres is the pgx-backed Store implementation.
type Postgres struct {
	pool *pgxpool.Pool
	log  *log.Logger
}

// NewPostgres acquires a connection pool. Failure here is a fatal init
// error per the error-handling design: callers should exit non-zero if
// this returns an error.
func NewPostgres(ctx context.Context, cfg PostgresConfig, logger *log.Logger) (*Postgres, error) {
	poolSize := cfg.PoolSize
	if poolSize < 5 {
		poolSize = 5
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?pool_max_conns=%d",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, poolSize)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: acquire pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	return &Postgres{pool: pool, log: logger}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

const getActiveArrivalsQuery = `
SELECT
	ai.id, ai.icao24, ai.callsign, ai.registration, ai.position, ai.flight_plan,
	ai.target_speed_kts, ai.target_heading_deg, ai.target_altitude_ft,
	ai.vertical_speed_fpm, ai.phase, ai.last_event_fired, ai.controller,
	ai.status, ai.flight_type, ai.aircraft_type_id, ai.airline_id,
	ai.created_at, ai.updated_at,
	at.icao_type, at.wake_category,
	al.icao, al.name
FROM aircraft_instances ai
LEFT JOIN aircraft_types at ON ai.aircraft_type_id = at.id
LEFT JOIN airlines al ON ai.airline_id = al.id
WHERE ai.status = 'active'
  AND ai.controller = $1
  AND ai.flight_type = 'ARRIVAL'
ORDER BY ai.created_at DESC
LIMIT $2
`

func (p *Postgres) GetActiveArrivals(ctx context.Context, controller string) ([]*domain.Aircraft, error) {
	rows, err := p.pool.Query(ctx, getActiveArrivalsQuery, controller, MaxActiveAircraft)
	if err != nil {
		return nil, fmt.Errorf("store: get_active_arrivals: %w", err)
	}
	defer rows.Close()

	var result []*domain.Aircraft
	for rows.Next() {
		a, err := scanAircraft(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan aircraft: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func scanAircraft(rows pgx.Rows) (*domain.Aircraft, error) {
	var (
		a                domain.Aircraft
		positionJSON     []byte
		flightPlanJSON   []byte
		lastEventFired   string
		icaoType, wake   *string
		airlineIcao      *string
		airlineName      *string
	)

	err := rows.Scan(
		&a.ID, &a.ICAO24, &a.Callsign, &a.Registration, &positionJSON, &flightPlanJSON,
		&a.TargetSpeedKts, &a.TargetHeadingDeg, &a.TargetAltitudeFt,
		&a.VerticalSpeedFpm, &a.Phase, &lastEventFired, &a.Controller,
		&a.Status, &a.FlightType, &a.AircraftTypeID, &a.AirlineID,
		&a.CreatedAt, &a.UpdatedAt,
		&icaoType, &wake, &airlineIcao, &airlineName,
	)
	if err != nil {
		return nil, err
	}

	if len(positionJSON) > 0 {
		if err := json.Unmarshal(positionJSON, &a.Position); err != nil {
			return nil, fmt.Errorf("decode position: %w", err)
		}
	}
	_ = flightPlanJSON // opaque to the core; not decoded

	a.LastEventFired = domain.NewEventSet(lastEventFired)

	if icaoType != nil {
		a.AircraftType = &domain.AircraftTypeInfo{ICAOType: *icaoType}
		if wake != nil {
			a.AircraftType.WakeCategory = *wake
		}
	}
	if airlineIcao != nil {
		a.Airline = &domain.AirlineInfo{ICAOCode: *airlineIcao}
		if airlineName != nil {
			a.Airline.Name = *airlineName
		}
	}

	return &a, nil
}

func (p *Postgres) UpdateAircraftState(ctx context.Context, id string, update AircraftUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	setClauses := make([]string, 0, 9)
	args := make([]any, 0, 9)
	next := func(clause string, val any) {
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", clause, len(args)))
	}

	if update.Position != nil {
		positionJSON, err := json.Marshal(update.Position)
		if err != nil {
			return fmt.Errorf("store: encode position: %w", err)
		}
		next("position", positionJSON)
	}
	if update.TargetSpeedKts != nil {
		next("target_speed_kts", *update.TargetSpeedKts)
	}
	if update.TargetHeadingDeg != nil {
		next("target_heading_deg", *update.TargetHeadingDeg)
	}
	if update.TargetAltitudeFt != nil {
		next("target_altitude_ft", *update.TargetAltitudeFt)
	}
	if update.VerticalSpeedFpm != nil {
		next("vertical_speed_fpm", *update.VerticalSpeedFpm)
	}
	if update.Phase != nil {
		next("phase", *update.Phase)
	}
	if update.LastEventFired != nil {
		next("last_event_fired", update.LastEventFired.String())
	}
	if update.Controller != nil {
		next("controller", *update.Controller)
	}
	if update.Status != nil {
		next("status", *update.Status)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE aircraft_instances SET %s WHERE id = $%d",
		joinClauses(setClauses), len(args))

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("store: update_aircraft_state(%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAircraftNotFound
	}
	return nil
}

func joinClauses(clauses []string) string {
	out := ""
	for i, c := range clauses {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

func (p *Postgres) MarkTouchdown(ctx context.Context, id string) error {
	landed := domain.StatusLanded
	ground := domain.ControllerGround
	touchdown := domain.PhaseTouchdown
	return p.UpdateAircraftState(ctx, id, AircraftUpdate{
		Status:     &landed,
		Controller: &ground,
		Phase:      &touchdown,
	})
}

func (p *Postgres) CreateEvent(ctx context.Context, event domain.Event) error {
	if event.Level == "" {
		event.Level = domain.LevelInfo
	}
	if event.Direction == "" {
		event.Direction = domain.DirectionSYS
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var detailsJSON []byte
	if len(event.Details) > 0 {
		var err error
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("store: encode event details: %w", err)
		}
	}

	const query = `
		INSERT INTO events (level, type, message, details, aircraft_id, sector, frequency, direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := p.pool.Exec(ctx, query,
		event.Level, event.Type, event.Message, detailsJSON,
		event.AircraftID, event.Sector, event.Frequency, event.Direction, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: create_event: %w", err)
	}
	return nil
}
