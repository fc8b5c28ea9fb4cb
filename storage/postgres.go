package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

// "23505" is the PostgreSQL error code for unique_violation
const uniqueViolationCode = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pg *PostgresRepo) Close() {
	pg.pool.Close()
}

// wrapDatabaseError keeps cancellation errors intact and marks anything
// else as an unexpected database failure.
func wrapDatabaseError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

func (pg *PostgresRepo) exec(ctx context.Context, builder sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, wrapDatabaseError(err)
	}
	return pg.pool.Exec(ctx, query, args...)
}

func (pg *PostgresRepo) queryRow(ctx context.Context, builder sq.SelectBuilder) pgx.Row {
	query, args, _ := builder.ToSql()
	return pg.pool.QueryRow(ctx, query, args...)
}

func (pg *PostgresRepo) query(ctx context.Context, builder sq.SelectBuilder) (pgx.Rows, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, wrapDatabaseError(err)
	}
	return pg.pool.Query(ctx, query, args...)
}

func (pg *PostgresRepo) CreateRoom(ctx context.Context, room domain.Room) error {
	_, err := pg.exec(ctx, psql.Insert("rooms").
		Columns("code", "name", "type", "max_amount_of_players", "amount_of_players", "private_room", "status", "created_by", "created_at").
		Values(room.Code, room.Name, room.Type, room.MaxAmountOfPlayers, room.AmountOfPlayers, room.PrivateRoom, room.Status, room.CreatedBy, room.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrRoomCodeTaken
		}
		return wrapDatabaseError(err)
	}
	return nil
}

func (pg *PostgresRepo) GetRoom(ctx context.Context, code string) (domain.Room, error) {
	room := domain.Room{Code: code}
	row := pg.queryRow(ctx, psql.Select("name", "type", "max_amount_of_players", "amount_of_players", "private_room", "status", "created_by", "created_at").
		From("rooms").Where(sq.Eq{"code": code}))

	err := row.Scan(&room.Name, &room.Type, &room.MaxAmountOfPlayers, &room.AmountOfPlayers, &room.PrivateRoom, &room.Status, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, wrapDatabaseError(err)
	}
	return room, nil
}

func (pg *PostgresRepo) UpdateRoom(ctx context.Context, room domain.Room) error {
	tag, err := pg.exec(ctx, psql.Update("rooms").
		Set("name", room.Name).
		Set("max_amount_of_players", room.MaxAmountOfPlayers).
		Set("amount_of_players", room.AmountOfPlayers).
		Set("private_room", room.PrivateRoom).
		Set("status", room.Status).
		Set("created_by", room.CreatedBy).
		Where(sq.Eq{"code": room.Code}))
	if err != nil {
		return wrapDatabaseError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (pg *PostgresRepo) DeleteRoom(ctx context.Context, code string) error {
	tag, err := pg.exec(ctx, psql.Delete("rooms").Where(sq.Eq{"code": code}))
	if err != nil {
		return wrapDatabaseError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func publicRoomsFilter(filterLabel string) sq.SelectBuilder {
	builder := psql.Select().From("rooms").
		Where(sq.Eq{"private_room": false}).
		Where("amount_of_players < max_amount_of_players").
		Where(sq.Lt{"status": domain.RoomStatusReadyForStart})
	if filterLabel != "" {
		pattern := "%" + filterLabel + "%"
		builder = builder.Where(sq.Or{sq.ILike{"name": pattern}, sq.ILike{"code": pattern}})
	}
	return builder
}

func (pg *PostgresRepo) ListPublicRooms(ctx context.Context, filterLabel string, offset, limit int) ([]domain.Room, int, error) {
	var total int
	row := pg.queryRow(ctx, publicRoomsFilter(filterLabel).Columns("COUNT(*)"))
	if err := row.Scan(&total); err != nil {
		return nil, 0, wrapDatabaseError(err)
	}
	if limit <= 0 {
		return nil, total, nil
	}

	rows, err := pg.query(ctx, publicRoomsFilter(filterLabel).
		Columns("code", "name", "type", "max_amount_of_players", "amount_of_players", "private_room", "status", "created_by", "created_at").
		OrderBy("name").
		Offset(uint64(offset)).
		Limit(uint64(limit)))
	if err != nil {
		return nil, 0, wrapDatabaseError(err)
	}
	defer rows.Close()

	result := make([]domain.Room, 0, limit)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.Code, &room.Name, &room.Type, &room.MaxAmountOfPlayers, &room.AmountOfPlayers, &room.PrivateRoom, &room.Status, &room.CreatedBy, &room.CreatedAt); err != nil {
			return nil, 0, wrapDatabaseError(err)
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDatabaseError(err)
	}
	return result, total, nil
}

func (pg *PostgresRepo) CreatePlayer(ctx context.Context, player domain.Player) error {
	_, err := pg.exec(ctx, psql.Insert("players").
		Columns("id", "name", "room_code", "profile_color", "url_profile_image", "score", "brackets_position", "created_at").
		Values(player.Id, player.Name, player.RoomCode, player.ProfileColor, player.UrlProfileImage, player.Score, player.BracketsPosition, player.CreatedAt))
	if err != nil {
		return wrapDatabaseError(err)
	}
	return nil
}

func (pg *PostgresRepo) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	player := domain.Player{Id: id}
	row := pg.queryRow(ctx, psql.Select("name", "room_code", "profile_color", "url_profile_image", "score", "brackets_position", "created_at").
		From("players").Where(sq.Eq{"id": id}))

	err := row.Scan(&player.Name, &player.RoomCode, &player.ProfileColor, &player.UrlProfileImage, &player.Score, &player.BracketsPosition, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Player{}, domain.ErrPlayerNotFound
		}
		return domain.Player{}, wrapDatabaseError(err)
	}
	return player, nil
}

func (pg *PostgresRepo) scanPlayers(rows pgx.Rows) ([]domain.Player, error) {
	defer rows.Close()
	result := make([]domain.Player, 0)
	for rows.Next() {
		var player domain.Player
		if err := rows.Scan(&player.Id, &player.Name, &player.RoomCode, &player.ProfileColor, &player.UrlProfileImage, &player.Score, &player.BracketsPosition, &player.CreatedAt); err != nil {
			return nil, wrapDatabaseError(err)
		}
		result = append(result, player)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDatabaseError(err)
	}
	return result, nil
}

func (pg *PostgresRepo) ListPlayers(ctx context.Context, roomCode string) ([]domain.Player, error) {
	rows, err := pg.query(ctx, psql.Select("id", "name", "room_code", "profile_color", "url_profile_image", "score", "brackets_position", "created_at").
		From("players").Where(sq.Eq{"room_code": roomCode}).OrderBy("created_at", "id"))
	if err != nil {
		return nil, wrapDatabaseError(err)
	}
	return pg.scanPlayers(rows)
}

func (pg *PostgresRepo) UpdatePlayer(ctx context.Context, player domain.Player) error {
	tag, err := pg.exec(ctx, psql.Update("players").
		Set("name", player.Name).
		Set("room_code", player.RoomCode).
		Set("profile_color", player.ProfileColor).
		Set("score", player.Score).
		Set("brackets_position", player.BracketsPosition).
		Where(sq.Eq{"id": player.Id}))
	if err != nil {
		return wrapDatabaseError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (pg *PostgresRepo) DeletePlayer(ctx context.Context, id string) error {
	tag, err := pg.exec(ctx, psql.Delete("players").Where(sq.Eq{"id": id}))
	if err != nil {
		return wrapDatabaseError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (pg *PostgresRepo) DeletePlayers(ctx context.Context, roomCode string) error {
	if _, err := pg.exec(ctx, psql.Delete("players").Where(sq.Eq{"room_code": roomCode})); err != nil {
		return wrapDatabaseError(err)
	}
	return nil
}

func (pg *PostgresRepo) CreateMatch(ctx context.Context, match domain.Match) error {
	if _, err := pg.exec(ctx, psql.Insert("matches").
		Columns("id", "game_id", "room_code").
		Values(match.Id, match.GameId, match.RoomCode)); err != nil {
		return wrapDatabaseError(err)
	}
	return nil
}

func (pg *PostgresRepo) GetMatchByGameId(ctx context.Context, gameId string) (domain.Match, error) {
	match := domain.Match{GameId: gameId}
	row := pg.queryRow(ctx, psql.Select("id", "room_code").From("matches").Where(sq.Eq{"game_id": gameId}))

	err := row.Scan(&match.Id, &match.RoomCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Match{}, domain.ErrMatchNotFound
		}
		return domain.Match{}, wrapDatabaseError(err)
	}
	return match, nil
}

func (pg *PostgresRepo) CreateMatchPlayer(ctx context.Context, matchPlayer domain.MatchPlayer) error {
	if _, err := pg.exec(ctx, psql.Insert("match_players").
		Columns("match_id", "player_id", "position").
		Values(matchPlayer.MatchId, matchPlayer.PlayerId, matchPlayer.Position)); err != nil {
		return wrapDatabaseError(err)
	}
	return nil
}

func (pg *PostgresRepo) ListMatchPlayers(ctx context.Context, matchId string) ([]domain.Player, error) {
	rows, err := pg.query(ctx, psql.Select("p.id", "p.name", "p.room_code", "p.profile_color", "p.url_profile_image", "p.score", "p.brackets_position", "p.created_at").
		From("players p").
		Join("match_players mp ON mp.player_id = p.id").
		Where(sq.Eq{"mp.match_id": matchId}).
		OrderBy("mp.position"))
	if err != nil {
		return nil, wrapDatabaseError(err)
	}
	return pg.scanPlayers(rows)
}
