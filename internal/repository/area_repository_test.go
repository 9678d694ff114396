package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmow/mower-fleet/internal/geo"
	"github.com/openmow/mower-fleet/internal/model"
)

func newAreaRepoMock(t *testing.T) (*AreaRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewAreaRepo(db), mock, db
}

func TestCreateArea_InsertsGeometryInOrder(t *testing.T) {
	repo, mock, db := newAreaRepoMock(t)
	defer db.Close()

	area := model.Area{
		OwnerID:  7,
		Name:     "Besides the lake",
		Notes:    "avoiding the trees",
		Boundary: []geo.Point{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		NogoZones: [][]geo.Point{
			{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO areas").
		WithArgs(uint64(7), "Besides the lake", "avoiding the trees").
		WillReturnResult(sqlmock.NewResult(11, 1))

	// Boundary points linked with ascending seq_no.
	mock.ExpectExec("INSERT INTO points").
		WithArgs("1", "2", "3").
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO area_points").
		WithArgs(uint64(101), uint64(11), 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO points").
		WithArgs("4", "5", "6").
		WillReturnResult(sqlmock.NewResult(102, 1))
	mock.ExpectExec("INSERT INTO area_points").
		WithArgs(uint64(102), uint64(11), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// The single nogo zone and its ordered points.
	mock.ExpectExec("INSERT INTO nogo_zones").
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO points").
		WithArgs("0", "0", "0").
		WillReturnResult(sqlmock.NewResult(103, 1))
	mock.ExpectExec("INSERT INTO nogo_points").
		WithArgs(uint64(103), uint64(21), 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO points").
		WithArgs("1", "1", "1").
		WillReturnResult(sqlmock.NewResult(104, 1))
	mock.ExpectExec("INSERT INTO nogo_points").
		WithArgs(uint64(104), uint64(21), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO points").
		WithArgs("2", "2", "2").
		WillReturnResult(sqlmock.NewResult(105, 1))
	mock.ExpectExec("INSERT INTO nogo_points").
		WithArgs(uint64(105), uint64(21), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), &area)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	assert.Equal(t, uint64(11), area.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArea_EmptyGeometry(t *testing.T) {
	repo, mock, db := newAreaRepoMock(t)
	defer db.Close()

	area := model.Area{OwnerID: 7, Name: "Bare"}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO areas").
		WithArgs(uint64(7), "Bare", "").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	_, err := repo.Create(context.Background(), &area)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failure partway through point insertion must roll back the area, its
// points and its join rows: nothing of the area is visible afterwards.
func TestCreateArea_RollsBackOnMidInsertFailure(t *testing.T) {
	repo, mock, db := newAreaRepoMock(t)
	defer db.Close()

	boundary := []geo.Point{{X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}}
	area := model.Area{OwnerID: 7, Name: "Doomed", Boundary: boundary}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO areas").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectExec("INSERT INTO points").
		WillReturnResult(sqlmock.NewResult(201, 1))
	mock.ExpectExec("INSERT INTO area_points").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO points").
		WillReturnResult(sqlmock.NewResult(202, 1))
	mock.ExpectExec("INSERT INTO area_points").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO points").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &area)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundary point 2")
	assert.Zero(t, area.ID, "a failed create must not assign an id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner_RoundTripsGeometry(t *testing.T) {
	repo, mock, db := newAreaRepoMock(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, notes FROM areas").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "notes"}).
			AddRow(11, "Besides the lake", "avoiding the trees"))

	mock.ExpectQuery("SELECT p.x, p.y, p.z FROM area_points").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"x", "y", "z"}).
			AddRow("1", "2", "3").
			AddRow("4", "5", "6"))

	mock.ExpectQuery("SELECT id FROM nogo_zones").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	mock.ExpectQuery("SELECT p.x, p.y, p.z FROM nogo_points").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"x", "y", "z"}).
			AddRow("0", "0", "0").
			AddRow("1", "1", "1").
			AddRow("2", "2", "2"))

	areas, err := repo.ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, areas, 1)

	a := areas[0]
	assert.Equal(t, uint64(11), a.ID)
	assert.Equal(t, "Besides the lake", a.Name)
	assert.Equal(t, "avoiding the trees", a.Notes)
	assert.Equal(t, []geo.Point{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, a.Boundary)
	require.Len(t, a.NogoZones, 1)
	assert.Equal(t, []geo.Point{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}}, a.NogoZones[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Full-precision coordinates must survive the store/load cycle exactly.
func TestListByOwner_PreservesDoublePrecision(t *testing.T) {
	repo, mock, db := newAreaRepoMock(t)
	defer db.Close()

	p := geo.Point{X: 52.619274360887445, Y: 24.0, Z: 1.2393361009732562}
	x, y, z := geo.EncodePoint(p)

	mock.ExpectQuery("SELECT id, name, notes FROM areas").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "notes"}).AddRow(11, "a", nil))
	mock.ExpectQuery("SELECT p.x, p.y, p.z FROM area_points").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"x", "y", "z"}).AddRow(x, y, z))
	mock.ExpectQuery("SELECT id FROM nogo_zones").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	areas, err := repo.ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	require.Len(t, areas[0].Boundary, 1)
	assert.Equal(t, p, areas[0].Boundary[0])
	assert.Empty(t, areas[0].NogoZones)
}

func TestListByOwner_NoAreas(t *testing.T) {
	repo, mock, db := newAreaRepoMock(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, notes FROM areas").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "notes"}))

	areas, err := repo.ListByOwner(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, areas)
}
