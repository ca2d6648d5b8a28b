package service

import (
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOfflineRepo struct {
	loads     int
	lessons   []model.OfflineLesson
	mu        sync.Mutex
	downloads []model.OfflineDownload
	recordErr error
}

func (r *fakeOfflineRepo) RecordDownload(download *model.OfflineDownload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	r.downloads = append(r.downloads, *download)
	return nil
}

func (r *fakeOfflineRepo) recorded() []model.OfflineDownload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.OfflineDownload(nil), r.downloads...)
}

func (r *fakeOfflineRepo) FindAllContent() ([]model.OfflineContentItem, error) {
	r.loads++
	return sampleOfflineItems(), nil
}

func (r *fakeOfflineRepo) FindContentByID(id string) (*model.OfflineContentItem, error) {
	for _, item := range sampleOfflineItems() {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOfflineRepo) FindOfflineLessons() ([]model.OfflineLesson, error) {
	return r.lessons, nil
}

type fakePackages struct {
	failFor  string
	uploaded map[string]string
}

func (p *fakePackages) PackageURL(ctx context.Context, contentID string) (string, error) {
	if contentID == p.failFor {
		return "", errors.New("storage offline")
	}
	return "/uploads/offline/" + contentID + ".zip", nil
}

func (p *fakePackages) UploadPackage(ctx context.Context, contentID string, reader io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if p.uploaded == nil {
		p.uploaded = map[string]string{}
	}
	p.uploaded[contentID] = string(data)
	return "/uploads/offline/" + contentID + ".zip", nil
}

type pushed struct {
	userID uint
	msg    WSMessage
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []pushed
}

func (p *recordingPublisher) PushToUser(userID uint, msg WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, pushed{userID, msg})
}

func (p *recordingPublisher) forUser(userID uint) []WSMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []WSMessage
	for _, m := range p.messages {
		if m.userID == userID {
			out = append(out, m.msg)
		}
	}
	return out
}

type offlineFixture struct {
	svc       *OfflineService
	repo      *fakeOfflineRepo
	packages  *fakePackages
	publisher *recordingPublisher
	sched     *manualScheduler
}

func newOfflineFixture() *offlineFixture {
	f := &offlineFixture{
		repo:      &fakeOfflineRepo{},
		packages:  &fakePackages{},
		publisher: &recordingPublisher{},
		sched:     &manualScheduler{},
	}
	f.svc = NewOfflineService(f.repo, f.packages, f.publisher, f.sched, config.OfflineConfig{
		TickInterval:   500 * time.Millisecond,
		TickStep:       10,
		TotalStorageMB: 100,
	})
	return f
}

func TestOfflineService_ShelfSeedsLazily(t *testing.T) {
	f := newOfflineFixture()
	assert.Equal(t, 0, f.repo.loads)

	shelf, err := f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.loads)
	assert.Len(t, shelf.Available, 4)
	assert.Empty(t, shelf.Downloading)
	require.Len(t, shelf.Downloaded, 2)
	assert.Equal(t, "/uploads/offline/5.zip", shelf.Downloaded[0].PackageURL)
	assert.Equal(t, 48.0, shelf.Storage.UsedMB)
	assert.Empty(t, shelf.Available[0].PackageURL)

	_, err = f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.loads, "shelf is built once per user")
}

func TestOfflineService_PackageURLFailureIsNotFatal(t *testing.T) {
	f := newOfflineFixture()
	f.packages.failFor = "6"

	shelf, err := f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, shelf.Downloaded, 2)
	assert.NotEmpty(t, shelf.Downloaded[0].PackageURL)
	assert.Empty(t, shelf.Downloaded[1].PackageURL)
}

func TestOfflineService_DownloadPushesEvents(t *testing.T) {
	f := newOfflineFixture()

	view, err := f.svc.StartDownload(1, "4")
	require.NoError(t, err)
	assert.Equal(t, model.ContentDownloading, view.State)

	f.sched.TickN(10)

	msgs := f.publisher.forUser(1)
	require.Len(t, msgs, 11)
	assert.Equal(t, EventDownloadState, msgs[0].Type)
	assert.Equal(t, EventDownloadProgress, msgs[1].Type)
	last := msgs[10].Data.(OfflineEvent)
	assert.Equal(t, TransitionCompleted, last.Transition)
	assert.Equal(t, model.ContentDownloaded, last.Item.State)

	assert.Empty(t, f.publisher.forUser(2))

	downloads := f.repo.recorded()
	require.Len(t, downloads, 1)
	assert.EqualValues(t, 1, downloads[0].UserID)
	assert.Equal(t, "4", downloads[0].ContentID)
}

func TestOfflineService_RecordFailureKeepsDownload(t *testing.T) {
	f := newOfflineFixture()
	f.repo.recordErr = errors.New("db down")

	_, err := f.svc.StartDownload(1, "4")
	require.NoError(t, err)
	f.sched.TickN(10)

	shelf, err := f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, ids(shelf.Downloaded), "4")
	assert.Empty(t, f.repo.recorded())
}

func TestOfflineService_UsersHaveSeparateShelves(t *testing.T) {
	f := newOfflineFixture()

	_, err := f.svc.StartDownload(1, "1")
	require.NoError(t, err)

	other, err := f.svc.Shelf(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, other.Downloading)

	_, err = f.svc.DeleteContent(2, "5")
	require.NoError(t, err)

	mine, err := f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine.Downloaded, 2)
	assert.Len(t, mine.Downloading, 1)
}

func TestOfflineService_TransitionErrors(t *testing.T) {
	f := newOfflineFixture()

	_, err := f.svc.CancelDownload(1, "1")
	assert.ErrorIs(t, err, util.ErrInvalidState)

	_, err = f.svc.DeleteContent(1, "1")
	assert.ErrorIs(t, err, util.ErrInvalidState)

	_, err = f.svc.StartDownload(1, "99")
	assert.ErrorIs(t, err, util.ErrContentNotFound)

	_, err = f.svc.StartDownload(1, "1")
	require.NoError(t, err)
	view, err := f.svc.CancelDownload(1, "1")
	require.NoError(t, err)
	assert.Equal(t, model.ContentAvailable, view.State)
}

func TestOfflineService_ApplyConfig(t *testing.T) {
	f := newOfflineFixture()
	_, err := f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)

	f.svc.ApplyConfig(config.OfflineConfig{TickInterval: time.Second, TickStep: 50})

	_, err = f.svc.StartDownload(1, "2")
	require.NoError(t, err)
	_, err = f.svc.StartDownload(3, "2")
	require.NoError(t, err)
	for _, task := range f.sched.tasks {
		assert.Equal(t, time.Second, task.interval)
	}

	f.sched.TickN(2)
	shelf, err := f.svc.Shelf(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, shelf.Downloaded, 3)
}

func TestOfflineService_Close(t *testing.T) {
	f := newOfflineFixture()
	_, err := f.svc.StartDownload(1, "1")
	require.NoError(t, err)

	f.svc.Close()
	assert.Equal(t, 0, f.sched.active())

	_, err = f.svc.StartDownload(2, "1")
	assert.ErrorIs(t, err, util.ErrInvalidState)
}

func TestOfflineService_OfflineLessons(t *testing.T) {
	f := newOfflineFixture()

	lessons, err := f.svc.OfflineLessons()
	require.NoError(t, err)
	assert.NotNil(t, lessons)
	assert.Empty(t, lessons)

	f.repo.lessons = []model.OfflineLesson{{LessonID: "l1", Title: "Intro", CourseTitle: "Mathematics"}}
	lessons, err = f.svc.OfflineLessons()
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestOfflineService_UploadPackage(t *testing.T) {
	f := newOfflineFixture()

	url, err := f.svc.UploadPackage(context.Background(), "3", strings.NewReader("pkg"), 3)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/offline/3.zip", url)
	assert.Equal(t, "pkg", f.packages.uploaded["3"])

	_, err = f.svc.UploadPackage(context.Background(), "missing", strings.NewReader("pkg"), 3)
	assert.ErrorIs(t, err, util.ErrContentNotFound)
}

// gatedOfflineRepo 第一次查询目录时阻塞，直到 release 被关闭
type gatedOfflineRepo struct {
	fakeOfflineRepo
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *gatedOfflineRepo) FindAllContent() ([]model.OfflineContentItem, error) {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return sampleOfflineItems(), nil
}

func TestOfflineService_CatalogLoadDoesNotBlockOtherUsers(t *testing.T) {
	repo := &gatedOfflineRepo{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewOfflineService(repo, &fakePackages{}, &recordingPublisher{}, &manualScheduler{}, config.OfflineConfig{})

	slow := make(chan error, 1)
	go func() {
		_, err := svc.Shelf(context.Background(), 1)
		slow <- err
	}()
	<-repo.entered

	fast := make(chan error, 1)
	go func() {
		_, err := svc.Shelf(context.Background(), 2)
		fast <- err
	}()
	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second user's shelf waited for the first user's catalog query")
	}

	close(repo.release)
	require.NoError(t, <-slow)
}

func TestOfflineService_ConcurrentFirstAccessSharesSimulator(t *testing.T) {
	f := newOfflineFixture()
	f.svc.Repo = &gatedOfflineRepo{entered: make(chan struct{}), release: make(chan struct{})}
	close(f.svc.Repo.(*gatedOfflineRepo).release)

	var wg sync.WaitGroup
	sims := make([]*OfflineSimulator, 8)
	for i := range sims {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sim, err := f.svc.simulator(7)
			assert.NoError(t, err)
			sims[i] = sim
		}(i)
	}
	wg.Wait()

	for _, sim := range sims {
		assert.Same(t, sims[0], sim)
	}
}
