//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/krishkalaria12/pic-profile-maker/config"
	"github.com/krishkalaria12/pic-profile-maker/database"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/krishkalaria12/pic-profile-maker/repository"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "pics_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/pics_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_Postgres(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(config.Database{URL: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(ctx, db))

	users := repository.NewUserRepository(db)
	pictures := repository.NewPictureRepository(db)

	u := &models.User{
		ID:       uuid.New(),
		Name:     "Testing",
		Email:    "test@example.com",
		IsActive: true,
		InitDate: time.Now().UTC(),
		UserType: models.UserTypeFree,
		PassHash: "hash",
	}
	require.NoError(t, users.Create(ctx, u))

	dup := *u
	dup.ID = uuid.New()
	require.ErrorIs(t, users.Create(ctx, &dup), repository.ErrEmailTaken)

	byEmail, err := users.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	city := "Riga"
	require.NoError(t, users.UpdateProfile(ctx, u.ID, repository.ProfileFields{Name: "Renamed", City: &city}))
	require.NoError(t, users.SetActive(ctx, u.ID, false))

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", byID.Name)
	require.Equal(t, u.Email, byID.Email)
	require.False(t, byID.IsActive)

	p := &models.Picture{UserID: u.ID, Filename: "face_preview_0.png", Quality: models.QualityPreview}
	require.NoError(t, pictures.Create(ctx, p))
	require.NotZero(t, p.ID)

	list, err := pictures.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.QualityPreview, list[0].Quality)
}
