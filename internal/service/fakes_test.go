package service

import (
	"context"
	"errors"
	"time"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

// In-memory doubles for the repository and integration interfaces. Behavior
// mirrors the SQL: InsertRows skips duplicate triples, MarkDone spans packs,
// PromoteFuture walks pack then rank order.

type fakeWorkRepo struct {
	nextID int
	works  map[int]models.WorkItem
}

func newFakeWorkRepo() *fakeWorkRepo {
	return &fakeWorkRepo{nextID: 1, works: make(map[int]models.WorkItem)}
}

func (f *fakeWorkRepo) add(work models.WorkItem) models.WorkItem {
	if work.WorkID == 0 {
		work.WorkID = f.nextID
		f.nextID++
	} else if work.WorkID >= f.nextID {
		f.nextID = work.WorkID + 1
	}
	f.works[work.WorkID] = work
	return work
}

func (f *fakeWorkRepo) Create(_ context.Context, work *models.WorkItem) error {
	*work = f.add(*work)
	return nil
}

func (f *fakeWorkRepo) Update(_ context.Context, work *models.WorkItem) error {
	f.works[work.WorkID] = *work
	return nil
}

func (f *fakeWorkRepo) GetByID(_ context.Context, id int) (*models.WorkItem, error) {
	if work, ok := f.works[id]; ok {
		return &work, nil
	}
	return nil, nil
}

func (f *fakeWorkRepo) GetByLegacyID(_ context.Context, alias string) (*models.WorkItem, error) {
	for _, work := range f.works {
		if work.OldWorkID != nil && *work.OldWorkID == alias {
			return &work, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkRepo) GetByIDs(_ context.Context, ids []int) (map[int]models.WorkItem, error) {
	found := make(map[int]models.WorkItem)
	for _, id := range ids {
		if work, ok := f.works[id]; ok {
			found[id] = work
		}
	}
	return found, nil
}

func (f *fakeWorkRepo) GetByLegacyIDs(_ context.Context, aliases []string) (map[string]models.WorkItem, error) {
	found := make(map[string]models.WorkItem)
	for _, alias := range aliases {
		for _, work := range f.works {
			if work.OldWorkID != nil && *work.OldWorkID == alias {
				found[alias] = work
			}
		}
	}
	return found, nil
}

func (f *fakeWorkRepo) GetAll(_ context.Context, limit, offset int) ([]models.WorkItem, int, error) {
	all := make([]models.WorkItem, 0, len(f.works))
	for _, work := range f.works {
		all = append(all, work)
	}
	return all, len(all), nil
}

type fakePackRepo struct {
	nextID int
	packs  map[int]models.WorkPack
	items  map[int][]models.WorkItem
}

func newFakePackRepo() *fakePackRepo {
	return &fakePackRepo{
		nextID: 1,
		packs:  make(map[int]models.WorkPack),
		items:  make(map[int][]models.WorkItem),
	}
}

func (f *fakePackRepo) addPack(pack models.WorkPack, works []models.WorkItem) models.WorkPack {
	if pack.PackID == 0 {
		pack.PackID = f.nextID
		f.nextID++
	} else if pack.PackID >= f.nextID {
		f.nextID = pack.PackID + 1
	}
	f.packs[pack.PackID] = pack
	f.items[pack.PackID] = works
	return pack
}

func (f *fakePackRepo) Create(_ context.Context, pack *models.WorkPack, workIDs []int) error {
	*pack = f.addPack(*pack, nil)
	for _, id := range workIDs {
		f.items[pack.PackID] = append(f.items[pack.PackID], models.WorkItem{WorkID: id})
	}
	return nil
}

func (f *fakePackRepo) Update(_ context.Context, pack *models.WorkPack, workIDs []int) error {
	f.packs[pack.PackID] = *pack
	f.items[pack.PackID] = nil
	for _, id := range workIDs {
		f.items[pack.PackID] = append(f.items[pack.PackID], models.WorkItem{WorkID: id})
	}
	return nil
}

func (f *fakePackRepo) GetByID(_ context.Context, id int) (*models.WorkPack, error) {
	if pack, ok := f.packs[id]; ok {
		return &pack, nil
	}
	return nil, nil
}

func (f *fakePackRepo) GetAll(_ context.Context, limit, offset int) ([]models.PackWithStats, int, error) {
	all := make([]models.PackWithStats, 0, len(f.packs))
	for id, pack := range f.packs {
		if pack.IsDeleted {
			continue
		}
		all = append(all, models.PackWithStats{WorkPack: pack, TotalWorks: len(f.items[id])})
	}
	return all, len(all), nil
}

func (f *fakePackRepo) GetWorks(_ context.Context, packID int) ([]models.WorkItem, error) {
	return f.items[packID], nil
}

func (f *fakePackRepo) SetDeleted(_ context.Context, packID int, deleted bool) error {
	pack := f.packs[packID]
	pack.IsDeleted = deleted
	f.packs[packID] = pack
	return nil
}

type fakeAssignedRepo struct {
	rows []models.AssignedWork
}

func (f *fakeAssignedRepo) has(username string, packID, workID int) bool {
	for _, row := range f.rows {
		if row.Username == username && row.PackID == packID && row.WorkID == workID {
			return true
		}
	}
	return false
}

func (f *fakeAssignedRepo) InsertRows(_ context.Context, rows []models.AssignedWork) (int, error) {
	added := 0
	for _, row := range rows {
		if f.has(row.Username, row.PackID, row.WorkID) {
			continue
		}
		f.rows = append(f.rows, row)
		added++
	}
	return added, nil
}

func (f *fakeAssignedRepo) GetByUser(_ context.Context, username string) ([]models.AssignedWork, error) {
	var found []models.AssignedWork
	for _, row := range f.rows {
		if row.Username == username {
			found = append(found, row)
		}
	}
	return found, nil
}

func (f *fakeAssignedRepo) GetByUserAndWorks(_ context.Context, username string, workIDs []int) ([]models.AssignedWork, error) {
	wanted := make(map[int]bool, len(workIDs))
	for _, id := range workIDs {
		wanted[id] = true
	}

	var found []models.AssignedWork
	for _, row := range f.rows {
		if row.Username == username && wanted[row.WorkID] {
			found = append(found, row)
		}
	}
	return found, nil
}

func (f *fakeAssignedRepo) GetByUserAndWork(ctx context.Context, username string, workID int) ([]models.AssignedWork, error) {
	return f.GetByUserAndWorks(ctx, username, []int{workID})
}

func (f *fakeAssignedRepo) MarkDone(_ context.Context, username string, workID int, score, incorrect string) (int, error) {
	updated := 0
	for i, row := range f.rows {
		if row.Username != username || row.WorkID != workID {
			continue
		}
		f.rows[i].WorkStatus = models.StatusDone
		f.rows[i].WorkScore = score
		f.rows[i].Incorrect = incorrect
		f.rows[i].LastUpdated = time.Now()
		updated++
	}
	return updated, nil
}

func (f *fakeAssignedRepo) MarkComplete(_ context.Context, username string, packID, workID int) (int, error) {
	updated := 0
	for i, row := range f.rows {
		if row.Username != username || row.PackID != packID || row.WorkID != workID {
			continue
		}
		f.rows[i].WorkStatus = models.StatusDone
		f.rows[i].WorkScore = "Complete"
		f.rows[i].Incorrect = "-"
		updated++
	}
	return updated, nil
}

func (f *fakeAssignedRepo) OverrideRow(_ context.Context, username string, packID, workID int, status models.WorkStatus, score, incorrect *string) (int, error) {
	updated := 0
	for i, row := range f.rows {
		if row.Username != username || row.PackID != packID || row.WorkID != workID {
			continue
		}
		f.rows[i].WorkStatus = status
		if score != nil {
			f.rows[i].WorkScore = *score
		}
		if incorrect != nil {
			f.rows[i].Incorrect = *incorrect
		}
		updated++
	}
	return updated, nil
}

func (f *fakeAssignedRepo) IncrementViews(_ context.Context, username string, packID, workID int) (int, error) {
	updated := 0
	for i, row := range f.rows {
		if row.Username != username || row.PackID != packID || row.WorkID != workID {
			continue
		}
		f.rows[i].WorkViews++
		updated++
	}
	return updated, nil
}

func (f *fakeAssignedRepo) PromoteFuture(_ context.Context, username string, batchSize int) (int, error) {
	type key struct{ pack, rank, idx int }
	var candidates []key
	for i, row := range f.rows {
		if row.Username == username && row.WorkStatus == models.StatusFuture {
			candidates = append(candidates, key{row.PackID, row.WorkRank, i})
		}
	}

	// Порядок повышения: pack_id, затем work_rank.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if b.pack < a.pack || (b.pack == a.pack && b.rank < a.rank) {
				candidates[i], candidates[j] = b, a
			}
		}
	}

	promoted := 0
	for _, c := range candidates {
		if promoted == batchSize {
			break
		}
		f.rows[c.idx].WorkStatus = models.StatusAssigned
		promoted++
	}
	return promoted, nil
}

type fakeDonePackRepo struct {
	done map[string]map[int]bool
}

func newFakeDonePackRepo() *fakeDonePackRepo {
	return &fakeDonePackRepo{done: make(map[string]map[int]bool)}
}

func (f *fakeDonePackRepo) Set(_ context.Context, username string, packID int) error {
	if f.done[username] == nil {
		f.done[username] = make(map[int]bool)
	}
	f.done[username][packID] = true
	return nil
}

func (f *fakeDonePackRepo) Delete(_ context.Context, username string, packID int) (int, error) {
	if f.done[username] == nil || !f.done[username][packID] {
		return 0, nil
	}
	delete(f.done[username], packID)
	return 1, nil
}

func (f *fakeDonePackRepo) GetPackIDs(_ context.Context, username string) (map[int]bool, error) {
	found := make(map[int]bool)
	for id := range f.done[username] {
		found[id] = true
	}
	return found, nil
}

type fakeNotificationRepo struct {
	notifications []models.InboundNotification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.InboundNotification) error {
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetLatest(_ context.Context) (*models.InboundNotification, error) {
	if len(f.notifications) == 0 {
		return nil, nil
	}
	latest := f.notifications[len(f.notifications)-1]
	return &latest, nil
}

type fakeArchiveStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeArchiveStore() *fakeArchiveStore {
	return &fakeArchiveStore{objects: make(map[string][]byte)}
}

func (f *fakeArchiveStore) Put(_ context.Context, key string, payload []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = payload
	return key, nil
}

func (f *fakeArchiveStore) Get(_ context.Context, key string) ([]byte, error) {
	payload, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return payload, nil
}

type fakePublisher struct {
	assigned []models.PackAssignedEvent
	recorded []models.ResultRecordedEvent
}

func (f *fakePublisher) PublishPackAssigned(_ context.Context, event *models.PackAssignedEvent) error {
	f.assigned = append(f.assigned, *event)
	return nil
}

func (f *fakePublisher) PublishResultRecorded(_ context.Context, event *models.ResultRecordedEvent) error {
	f.recorded = append(f.recorded, *event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }
