package service

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

func newIngestFixture() (*fakeWorkRepo, *fakeAssignedRepo, *fakeNotificationRepo, *fakePublisher, IngestService) {
	workRepo := newFakeWorkRepo()
	assignedRepo := &fakeAssignedRepo{}
	notificationRepo := &fakeNotificationRepo{}
	events := &fakePublisher{}
	svc := NewIngestService(workRepo, assignedRepo, notificationRepo, nil, events, zerolog.Nop())
	return workRepo, assignedRepo, notificationRepo, events, svc
}

func TestProcessNotificationMarksDoneAcrossPacks(t *testing.T) {
	workRepo, assignedRepo, notificationRepo, events, svc := newIngestFixture()
	workRepo.add(models.WorkItem{WorkID: 101, WorkName: "Linear Equations"})

	// Одна и та же работа назначена под двумя паками.
	assignedRepo.rows = []models.AssignedWork{
		{Username: "alice", PackID: 1, WorkID: 101, WorkStatus: models.StatusAssigned},
		{Username: "alice", PackID: 2, WorkID: 101, WorkStatus: models.StatusPast},
		{Username: "bob", PackID: 1, WorkID: 101, WorkStatus: models.StatusAssigned},
	}

	result := svc.ProcessNotification(context.Background(),
		"noreply@worksite.example",
		`Result for "101" by "alice"`,
		"",
		"Answered: 7/10\nQuestion 3 Incorrect\n",
	)

	assert.Equal(t, "101", result.ID)
	assert.Equal(t, "alice", result.User)

	aliceRows, _ := assignedRepo.GetByUser(context.Background(), "alice")
	for _, row := range aliceRows {
		assert.Equal(t, models.StatusDone, row.WorkStatus)
		assert.Equal(t, "7 out of 10", row.WorkScore)
		assert.Equal(t, "Q: 3", row.Incorrect)
	}

	// Чужие строки не тронуты.
	bobRows, _ := assignedRepo.GetByUser(context.Background(), "bob")
	assert.Equal(t, models.StatusAssigned, bobRows[0].WorkStatus)

	require.Len(t, events.recorded, 1)
	assert.Equal(t, "alice", events.recorded[0].Username)
	assert.Equal(t, 101, events.recorded[0].WorkID)
	assert.Equal(t, 2, events.recorded[0].RowsDone)

	require.Len(t, notificationRepo.notifications, 1)
	assert.Equal(t, 2, notificationRepo.notifications[0].RowsDone)
	assert.Equal(t, "101", notificationRepo.notifications[0].ParsedID)
}

func TestProcessNotificationResolvesLegacyAlias(t *testing.T) {
	workRepo, assignedRepo, _, _, svc := newIngestFixture()
	alias := "ALG-0042"
	workRepo.add(models.WorkItem{WorkID: 101, OldWorkID: &alias, WorkName: "Linear Equations"})

	assignedRepo.rows = []models.AssignedWork{
		{Username: "alice", PackID: 1, WorkID: 101, WorkStatus: models.StatusAssigned},
	}

	svc.ProcessNotification(context.Background(), "",
		`Result for "ALG-0042" by "alice"`, "", "Answered: 10/10\n")

	rows, _ := assignedRepo.GetByUser(context.Background(), "alice")
	assert.Equal(t, models.StatusDone, rows[0].WorkStatus)
	assert.Equal(t, "10 out of 10", rows[0].WorkScore)
}

func TestProcessNotificationDiscardsUnmatchable(t *testing.T) {
	_, assignedRepo, notificationRepo, events, svc := newIngestFixture()
	assignedRepo.rows = []models.AssignedWork{
		{Username: "alice", PackID: 1, WorkID: 101, WorkStatus: models.StatusAssigned},
	}

	tests := []struct {
		name    string
		subject string
	}{
		{"malformed subject", "delivery failure"},
		{"template sentinel", `Result for "%work_id%" by "alice"`},
		{"unknown alias", `Result for "NOPE-1" by "alice"`},
		{"no matching rows", `Result for "999" by "alice"`},
		{"unknown user", `Result for "101" by "stranger"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.ProcessNotification(context.Background(), "", tt.subject, "", "Answered: 10/10\n")

			rows, _ := assignedRepo.GetByUser(context.Background(), "alice")
			assert.Equal(t, models.StatusAssigned, rows[0].WorkStatus)
			assert.Empty(t, events.recorded)
		})
	}

	// Каждая доставка архивируется, даже мусорная.
	assert.Len(t, notificationRepo.notifications, len(tests))
}

func TestProcessNotificationTruncatesLongSummaries(t *testing.T) {
	workRepo, assignedRepo, _, _, svc := newIngestFixture()
	workRepo.add(models.WorkItem{WorkID: 101, WorkName: "Linear Equations"})
	assignedRepo.rows = []models.AssignedWork{
		{Username: "alice", PackID: 1, WorkID: 101, WorkStatus: models.StatusAssigned},
	}

	var body strings.Builder
	body.WriteString("Answered: 2/60\n")
	for i := 1; i <= 58; i++ {
		body.WriteString("Question " + strconv.Itoa(i) + " Incorrect\n")
	}

	svc.ProcessNotification(context.Background(), "",
		`Result for "101" by "alice"`, "", body.String())

	rows, _ := assignedRepo.GetByUser(context.Background(), "alice")
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Incorrect, 100)
	assert.True(t, strings.HasSuffix(rows[0].Incorrect, "..."))
}

func TestProcessNotificationRedeliveryIsHarmless(t *testing.T) {
	workRepo, assignedRepo, _, events, svc := newIngestFixture()
	workRepo.add(models.WorkItem{WorkID: 101, WorkName: "Linear Equations"})
	assignedRepo.rows = []models.AssignedWork{
		{Username: "alice", PackID: 1, WorkID: 101, WorkStatus: models.StatusAssigned},
	}

	subject := `Result for "101" by "alice"`
	svc.ProcessNotification(context.Background(), "", subject, "", "Answered: 7/10\n")
	svc.ProcessNotification(context.Background(), "", subject, "", "Answered: 7/10\n")

	rows, _ := assignedRepo.GetByUser(context.Background(), "alice")
	assert.Equal(t, models.StatusDone, rows[0].WorkStatus)
	assert.Equal(t, "7 out of 10", rows[0].WorkScore)
	assert.Len(t, events.recorded, 2)
}

func TestGetLastNotificationBody(t *testing.T) {
	workRepo := newFakeWorkRepo()
	workRepo.add(models.WorkItem{WorkID: 101, WorkName: "Linear Equations"})
	notificationRepo := &fakeNotificationRepo{}
	archive := newFakeArchiveStore()
	svc := NewIngestService(workRepo, &fakeAssignedRepo{}, notificationRepo, archive, nil, zerolog.Nop())

	_, err := svc.GetLastNotificationBody(context.Background())
	assert.ErrorIs(t, err, ErrNoArchivedBody)

	svc.ProcessNotification(context.Background(),
		"noreply@worksite.example",
		`Result for "101" by "alice"`,
		"",
		"Answered: 7/10\n",
	)

	payload, err := svc.GetLastNotificationBody(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(payload), "From: noreply@worksite.example")
	assert.Contains(t, string(payload), "Answered: 7/10")
}

func TestGetLastNotificationBodyWithoutStorage(t *testing.T) {
	workRepo, _, _, _, svc := newIngestFixture()
	workRepo.add(models.WorkItem{WorkID: 101, WorkName: "Linear Equations"})

	// Без объектного хранилища строка архива есть, тела нет.
	svc.ProcessNotification(context.Background(), "", `Result for "101" by "alice"`, "", "")

	_, err := svc.GetLastNotificationBody(context.Background())
	assert.ErrorIs(t, err, ErrNoArchivedBody)
}

func TestGetLastNotification(t *testing.T) {
	workRepo, _, _, _, svc := newIngestFixture()
	workRepo.add(models.WorkItem{WorkID: 101, WorkName: "Linear Equations"})

	last, err := svc.GetLastNotification(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)

	svc.ProcessNotification(context.Background(), "", `Result for "101" by "alice"`, "", "")
	svc.ProcessNotification(context.Background(), "", `Result for "101" by "bob"`, "", "")

	last, err = svc.GetLastNotification(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "bob", last.ParsedUser)
}
