package usecase

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/containers"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/store/memstore"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{Container: config.ContainerConfig{
		MaxAudioTracks:         2,
		MaxSubtitleTracks:      2,
		RequireDefaultSubtitle: true,
	}}
}

func accountCtx(accountID string) context.Context {
	return utils.WithPrincipal(context.Background(), &utils.Principal{AccountID: accountID, Role: utils.AccountRole})
}

func newUseCase(t *testing.T, c *models.VideoContainer, seedTasks ...*models.Task) (containers.UseCase, *memstore.MemStore) {
	t.Helper()
	st := memstore.New(nil)
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		if c != nil {
			if err := tx.InsertContainer(context.Background(), c); err != nil {
				return err
			}
		}
		for _, task := range seedTasks {
			if err := tx.InsertTask(context.Background(), task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := func() time.Time { return testNow }
	return NewContainerUseCase(testConfig(), st, now, logger.NewNopLogger()), st
}

func newContainer() *models.VideoContainer {
	return models.NewVideoContainer("c-1", "acc", testNow)
}

func video(dirname string, committed *models.VideoMetadata, staging models.Staging[models.VideoMetadata]) *models.VideoTrack {
	return &models.VideoTrack{Dirname: dirname, Committed: committed, Staging: staging}
}

func audio(dirname string, committed *models.AudioMetadata, staging models.Staging[models.AudioMetadata]) *models.AudioTrack {
	return &models.AudioTrack{Dirname: dirname, Committed: committed, Staging: staging}
}

func subtitle(dirname string, committed *models.SubtitleMetadata, staging models.Staging[models.SubtitleMetadata]) *models.SubtitleTrack {
	return &models.SubtitleTrack{Dirname: dirname, Committed: committed, Staging: staging}
}

func addVideo() models.Staging[models.VideoMetadata] {
	return models.StageAdd[models.VideoMetadata]{Metadata: models.VideoMetadata{DurationMs: 1000, Width: 1280, Height: 720}}
}

func addAudio(name string, isDefault bool) models.Staging[models.AudioMetadata] {
	return models.StageAdd[models.AudioMetadata]{Metadata: models.AudioMetadata{Name: name, IsDefault: isDefault}}
}

func addSubtitle(name string, isDefault bool) models.Staging[models.SubtitleMetadata] {
	return models.StageAdd[models.SubtitleMetadata]{Metadata: models.SubtitleMetadata{Name: name, IsDefault: isDefault}}
}

func taskKeys(st *memstore.MemStore) []string {
	keys := []string{}
	for _, task := range st.Tasks() {
		keys = append(keys, string(task.Kind)+" "+task.ID)
	}
	return keys
}

func stored(t *testing.T, st *memstore.MemStore) []byte {
	t.Helper()
	c, err := st.GetContainer(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("GetContainer: %v", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestCreateAndGet(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := accountCtx("acc")
	c, err := uc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.StorageRootPrefix != "acc/"+c.ContainerID+"/" {
		t.Fatalf("root = %q", c.StorageRootPrefix)
	}
	if !reflect.DeepEqual(c.MasterPlaylist, models.PlaylistSynced{Version: 0}) {
		t.Fatalf("playlist = %+v", c.MasterPlaylist)
	}
	got, err := uc.Get(ctx, c.ContainerID)
	if err != nil || got.ContainerID != c.ContainerID {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err = uc.Get(accountCtx("other"), c.ContainerID); !httperrors.IsNotFound(err) {
		t.Fatalf("Get from another account: err = %v, want NotFound", err)
	}
	if _, err = uc.Create(context.Background()); err == nil {
		t.Fatalf("Create without principal: expected error")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	c := newContainer()
	c.MasterPlaylist = models.PlaylistSynced{Version: 1, Filename: "1"}
	c.Processing = models.Formatting{Kind: models.MediaProcessing, StorageFilename: "f-1", ContentLength: 10}
	c.VideoTracks = []*models.VideoTrack{video("v1", &models.VideoMetadata{DurationMs: 1}, nil)}
	c.AudioTracks = []*models.AudioTrack{audio("a1", nil, addAudio("en", true))}
	formatting, _ := models.NewTask(models.TaskFormatting, "c-1/f-1", models.FormattingPayload{ContainerID: "c-1", StorageFilename: "f-1"}, 0)
	uc, st := newUseCase(t, c, formatting)
	ctx := accountCtx("acc")

	if err := uc.Delete(ctx, "c-1"); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	want := []string{
		"DELETE_KEY acc/c-1/1",
		"DELETE_KEY acc/c-1/a1/",
		"DELETE_KEY acc/c-1/master.json",
		"DELETE_KEY acc/c-1/v1/",
		"DELETE_UPLOAD_FILE f-1",
		"USAGE_END acc/c-1/a1/",
		"USAGE_END acc/c-1/v1/",
	}
	if got := taskKeys(st); !reflect.DeepEqual(got, want) {
		t.Fatalf("tasks = %v\nwant %v", got, want)
	}
	if _, err := st.GetContainer(ctx, "c-1"); !httperrors.IsNotFound(err) {
		t.Fatalf("container still present: %v", err)
	}
	var payload models.DeleteUploadFilePayload
	for _, task := range st.Tasks() {
		if task.Kind == models.TaskDeleteUploadFile {
			_ = task.Decode(&payload)
		}
	}
	if !payload.RecordEnd || payload.AccountID != "acc" {
		t.Fatalf("upload file payload = %+v", payload)
	}

	before := st.Tasks()
	if err := uc.Delete(ctx, "c-1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if after := st.Tasks(); !reflect.DeepEqual(before, after) {
		t.Fatalf("second delete changed tasks")
	}
}

func TestDeleteWhileUploadingCarriesSession(t *testing.T) {
	c := newContainer()
	c.Processing = models.Uploading{Kind: models.SubtitleProcessing, Upload: models.ResumableUploadState{
		StorageFilename: "f-2",
		SessionURL:      "https://primary.test/session/1",
		ContentLength:   5,
	}}
	uc, st := newUseCase(t, c)
	if err := uc.Delete(accountCtx("acc"), "c-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	tasks := st.Tasks()
	var payload models.DeleteUploadFilePayload
	found := false
	for _, task := range tasks {
		if task.Kind == models.TaskDeleteUploadFile && task.ID == "f-2" {
			found = true
			_ = task.Decode(&payload)
		}
	}
	if !found || payload.SessionURL != "https://primary.test/session/1" || payload.RecordEnd {
		t.Fatalf("upload file task found=%v payload=%+v", found, payload)
	}
}

func TestStagingRoundTrip(t *testing.T) {
	c := newContainer()
	committed := &models.AudioMetadata{Name: "en", IsDefault: true}
	c.AudioTracks = []*models.AudioTrack{audio("a1", committed, nil)}
	uc, st := newUseCase(t, c)
	ctx := accountCtx("acc")

	name := "fr"
	got, err := uc.UpdateTrack(ctx, "c-1", models.AudioTrackKind, "a1", &models.TrackUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}
	md, ok := got.AudioTracks[0].StagedAdd()
	if !ok || md != (models.AudioMetadata{Name: "fr", IsDefault: true}) {
		t.Fatalf("staged = %+v, %v", md, ok)
	}
	// a second update keeps building on the staged metadata
	isDefault := false
	if got, err = uc.UpdateTrack(ctx, "c-1", models.AudioTrackKind, "a1", &models.TrackUpdate{IsDefault: &isDefault}); err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}
	if md, _ = got.AudioTracks[0].StagedAdd(); md != (models.AudioMetadata{Name: "fr", IsDefault: false}) {
		t.Fatalf("staged = %+v", md)
	}

	got, err = uc.DropStaging(ctx, "c-1", models.AudioTrackKind, "a1")
	if err != nil {
		t.Fatalf("DropStaging: %v", err)
	}
	if len(got.AudioTracks) != 1 || got.AudioTracks[0].Staging != nil || !reflect.DeepEqual(got.AudioTracks[0].Committed, committed) {
		t.Fatalf("audio tracks = %+v", got.AudioTracks)
	}
	if keys := taskKeys(st); len(keys) != 0 {
		t.Fatalf("tasks = %v, want none", keys)
	}
}

func TestDropStagingRemovesOrphan(t *testing.T) {
	c := newContainer()
	c.SubtitleTracks = []*models.SubtitleTrack{
		subtitle("s1", &models.SubtitleMetadata{Name: "en", IsDefault: true}, nil),
		subtitle("s2", nil, addSubtitle("fr", false)),
	}
	uc, st := newUseCase(t, c)

	got, err := uc.DropStaging(accountCtx("acc"), "c-1", models.SubtitleTrackKind, "s2")
	if err != nil {
		t.Fatalf("DropStaging: %v", err)
	}
	if len(got.SubtitleTracks) != 1 || got.SubtitleTracks[0].Dirname != "s1" {
		t.Fatalf("subtitle tracks = %+v", got.SubtitleTracks)
	}
	want := []string{"DELETE_KEY acc/c-1/s2/", "USAGE_END acc/c-1/s2/"}
	if keys := taskKeys(st); !reflect.DeepEqual(keys, want) {
		t.Fatalf("tasks = %v, want %v", keys, want)
	}
}

func TestTrackPreconditions(t *testing.T) {
	c := newContainer()
	c.VideoTracks = []*models.VideoTrack{
		video("v1", &models.VideoMetadata{}, nil),
		video("v2", nil, addVideo()),
	}
	uc, _ := newUseCase(t, c)
	ctx := accountCtx("acc")

	tests := []struct {
		name  string
		call  func() error
		check func(error) bool
	}{
		{"delete uncommitted", func() error {
			_, err := uc.DeleteTrack(ctx, "c-1", models.VideoTrackKind, "v2")
			return err
		}, httperrors.IsBadRequest},
		{"drop without staging", func() error {
			_, err := uc.DropStaging(ctx, "c-1", models.VideoTrackKind, "v1")
			return err
		}, httperrors.IsBadRequest},
		{"unknown track", func() error {
			_, err := uc.DeleteTrack(ctx, "c-1", models.VideoTrackKind, "nope")
			return err
		}, httperrors.IsNotFound},
		{"unknown container", func() error {
			_, err := uc.DeleteTrack(ctx, "c-2", models.VideoTrackKind, "v1")
			return err
		}, httperrors.IsNotFound},
		{"other account", func() error {
			_, err := uc.DeleteTrack(accountCtx("other"), "c-1", models.VideoTrackKind, "v1")
			return err
		}, httperrors.IsNotFound},
		{"unknown kind", func() error {
			_, err := uc.DeleteTrack(ctx, "c-1", models.TrackKind("data"), "v1")
			return err
		}, httperrors.IsBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestCommitScenario(t *testing.T) {
	c := newContainer()
	c.MasterPlaylist = models.PlaylistSynced{Version: 0, Filename: "0"}
	c.VideoTracks = []*models.VideoTrack{video("v1", nil, addVideo())}
	c.AudioTracks = []*models.AudioTrack{audio("a1", nil, addAudio("en", true))}
	c.SubtitleTracks = []*models.SubtitleTrack{subtitle("s1", nil, addSubtitle("en", true))}
	uc, st := newUseCase(t, c)

	res, err := uc.Commit(accountCtx("acc"), "c-1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !res.Success || res.Error != "" {
		t.Fatalf("result = %+v", res)
	}
	got, _ := st.GetContainer(context.Background(), "c-1")
	if got.VideoTracks[0].Committed == nil || got.VideoTracks[0].Staging != nil {
		t.Fatalf("video = %+v", got.VideoTracks[0])
	}
	if got.AudioTracks[0].Committed == nil || got.AudioTracks[0].Staging != nil {
		t.Fatalf("audio = %+v", got.AudioTracks[0])
	}
	if got.SubtitleTracks[0].Committed == nil || got.SubtitleTracks[0].Staging != nil {
		t.Fatalf("subtitle = %+v", got.SubtitleTracks[0])
	}
	want := models.PlaylistWritingToFile{Version: 1, FilesToDelete: []string{"0"}, DirsToDelete: []string{}}
	if !reflect.DeepEqual(got.MasterPlaylist, want) {
		t.Fatalf("playlist = %+v, want %+v", got.MasterPlaylist, want)
	}
	if keys := taskKeys(st); !reflect.DeepEqual(keys, []string{"PLAYLIST_WRITING c-1/1"}) {
		t.Fatalf("tasks = %v", keys)
	}
}

func TestCommitSupersedesInFlightSync(t *testing.T) {
	c := newContainer()
	c.MasterPlaylist = models.PlaylistSyncing{Version: 3, Filename: "3", FilesToDelete: []string{"2"}, DirsToDelete: []string{"old"}}
	c.VideoTracks = []*models.VideoTrack{
		video("v1", &models.VideoMetadata{DurationMs: 1}, models.StageDelete[models.VideoMetadata]{}),
		video("v2", nil, addVideo()),
	}
	syncing, _ := models.NewTask(models.TaskPlaylistSyncing, "c-1/3", models.PlaylistPayload{ContainerID: "c-1", Version: 3}, 0)
	uc, st := newUseCase(t, c, syncing)

	res, err := uc.Commit(accountCtx("acc"), "c-1")
	if err != nil || !res.Success {
		t.Fatalf("Commit = %+v, %v", res, err)
	}
	got, _ := st.GetContainer(context.Background(), "c-1")
	want := models.PlaylistWritingToFile{Version: 4, FilesToDelete: []string{"2", "3"}, DirsToDelete: []string{"old", "v1"}}
	if !reflect.DeepEqual(got.MasterPlaylist, want) {
		t.Fatalf("playlist = %+v, want %+v", got.MasterPlaylist, want)
	}
	if len(got.VideoTracks) != 1 || got.VideoTracks[0].Dirname != "v2" {
		t.Fatalf("video tracks = %+v", got.VideoTracks)
	}
	if keys := taskKeys(st); !reflect.DeepEqual(keys, []string{"PLAYLIST_WRITING c-1/4"}) {
		t.Fatalf("tasks = %v", keys)
	}
}

func TestCommitValidationLeavesContainerUnchanged(t *testing.T) {
	committedVideo := func() []*models.VideoTrack {
		return []*models.VideoTrack{video("v1", &models.VideoMetadata{DurationMs: 1}, nil)}
	}
	tests := []struct {
		name  string
		build func(c *models.VideoContainer)
		want  models.ValidationCode
	}{
		{"no video", func(c *models.VideoContainer) {
			c.AudioTracks = []*models.AudioTrack{audio("a1", nil, addAudio("en", true))}
		}, models.NoVideoTrack},
		{"only video staged for delete", func(c *models.VideoContainer) {
			c.VideoTracks = []*models.VideoTrack{video("v1", &models.VideoMetadata{}, models.StageDelete[models.VideoMetadata]{})}
		}, models.NoVideoTrack},
		{"two videos", func(c *models.VideoContainer) {
			c.VideoTracks = append(committedVideo(), video("v2", nil, addVideo()))
		}, models.MoreThanOneVideoTracks},
		{"no default audio", func(c *models.VideoContainer) {
			c.VideoTracks = committedVideo()
			c.AudioTracks = []*models.AudioTrack{audio("a1", nil, addAudio("en", false))}
		}, models.NoDefaultAudioTrack},
		{"two default audio", func(c *models.VideoContainer) {
			c.VideoTracks = committedVideo()
			c.AudioTracks = []*models.AudioTrack{
				audio("a1", &models.AudioMetadata{Name: "en", IsDefault: true}, nil),
				audio("a2", nil, addAudio("fr", true)),
			}
		}, models.MoreThanOneDefaultAudio},
		{"too many audio", func(c *models.VideoContainer) {
			c.VideoTracks = committedVideo()
			c.AudioTracks = []*models.AudioTrack{
				audio("a1", nil, addAudio("en", true)),
				audio("a2", nil, addAudio("fr", false)),
				audio("a3", nil, addAudio("de", false)),
			}
		}, models.TooManyAudioTracks},
		{"no default subtitle", func(c *models.VideoContainer) {
			c.VideoTracks = committedVideo()
			c.SubtitleTracks = []*models.SubtitleTrack{subtitle("s1", nil, addSubtitle("en", false))}
		}, models.NoDefaultSubtitleTrack},
		{"two default subtitles", func(c *models.VideoContainer) {
			c.VideoTracks = committedVideo()
			c.SubtitleTracks = []*models.SubtitleTrack{
				subtitle("s1", nil, addSubtitle("en", true)),
				subtitle("s2", nil, addSubtitle("fr", true)),
			}
		}, models.MoreThanOneDefaultSubtitle},
		{"too many subtitles", func(c *models.VideoContainer) {
			c.VideoTracks = committedVideo()
			c.SubtitleTracks = []*models.SubtitleTrack{
				subtitle("s1", nil, addSubtitle("en", true)),
				subtitle("s2", nil, addSubtitle("fr", false)),
				subtitle("s3", nil, addSubtitle("de", false)),
			}
		}, models.TooManySubtitleTracks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContainer()
			c.MasterPlaylist = models.PlaylistSynced{Version: 2, Filename: "2"}
			tt.build(c)
			uc, st := newUseCase(t, c)
			before := stored(t, st)

			res, err := uc.Commit(accountCtx("acc"), "c-1")
			if err != nil {
				t.Fatalf("Commit: %v", err)
			}
			if res.Success || res.Error != tt.want || res.Container != nil {
				t.Fatalf("result = %+v, want error %s", res, tt.want)
			}
			if after := stored(t, st); string(after) != string(before) {
				t.Fatalf("container changed:\n%s\n%s", before, after)
			}
			if keys := taskKeys(st); len(keys) != 0 {
				t.Fatalf("tasks = %v", keys)
			}
		})
	}
}

func TestCommitWithoutDefaultSubtitleRule(t *testing.T) {
	c := newContainer()
	c.VideoTracks = []*models.VideoTrack{video("v1", nil, addVideo())}
	c.SubtitleTracks = []*models.SubtitleTrack{subtitle("s1", nil, addSubtitle("en", false))}
	st := memstore.New(nil)
	_ = st.InTx(context.Background(), func(tx store.Tx) error { return tx.InsertContainer(context.Background(), c) })
	cfg := testConfig()
	cfg.Container.RequireDefaultSubtitle = false
	uc := NewContainerUseCase(cfg, st, func() time.Time { return testNow }, logger.NewNopLogger())

	res, err := uc.Commit(accountCtx("acc"), "c-1")
	if err != nil || !res.Success {
		t.Fatalf("Commit = %+v, %v", res, err)
	}
}

func snapshotOf(c *models.VideoContainer) *models.StagingSnapshot {
	s := &models.StagingSnapshot{}
	for _, t := range c.VideoTracks {
		s.VideoTracks = append(s.VideoTracks, models.TrackStaging[models.VideoMetadata]{Dirname: t.Dirname, Staging: models.ToStagingData[models.VideoMetadata](t.Staging)})
	}
	for _, t := range c.AudioTracks {
		s.AudioTracks = append(s.AudioTracks, models.TrackStaging[models.AudioMetadata]{Dirname: t.Dirname, Staging: models.ToStagingData[models.AudioMetadata](t.Staging)})
	}
	for _, t := range c.SubtitleTracks {
		s.SubtitleTracks = append(s.SubtitleTracks, models.TrackStaging[models.SubtitleMetadata]{Dirname: t.Dirname, Staging: models.ToStagingData[models.SubtitleMetadata](t.Staging)})
	}
	return s
}

func stagingContainer() *models.VideoContainer {
	c := newContainer()
	c.VideoTracks = []*models.VideoTrack{video("v1", &models.VideoMetadata{DurationMs: 1}, nil)}
	c.AudioTracks = []*models.AudioTrack{
		audio("a1", &models.AudioMetadata{Name: "en", IsDefault: true}, nil),
		audio("a2", nil, addAudio("fr", false)),
	}
	return c
}

func TestSaveStagingTrackMismatch(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *models.StagingSnapshot)
	}{
		{"missing track", func(s *models.StagingSnapshot) { s.AudioTracks = s.AudioTracks[:1] }},
		{"extra track", func(s *models.StagingSnapshot) {
			s.SubtitleTracks = append(s.SubtitleTracks, models.TrackStaging[models.SubtitleMetadata]{Dirname: "s9"})
		}},
		{"reordered", func(s *models.StagingSnapshot) {
			s.AudioTracks[0], s.AudioTracks[1] = s.AudioTracks[1], s.AudioTracks[0]
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stagingContainer()
			uc, st := newUseCase(t, c)
			before := stored(t, st)
			snapshot := snapshotOf(c)
			snapshot.AudioTracks[1].Staging = nil
			tt.modify(snapshot)

			res, err := uc.SaveStaging(accountCtx("acc"), "c-1", snapshot)
			if err != nil {
				t.Fatalf("SaveStaging: %v", err)
			}
			if res.Success || res.Error != models.TrackMismatch {
				t.Fatalf("result = %+v", res)
			}
			if after := stored(t, st); string(after) != string(before) {
				t.Fatalf("container changed")
			}
			if keys := taskKeys(st); len(keys) != 0 {
				t.Fatalf("tasks = %v", keys)
			}
		})
	}
}

func TestSaveStagingAppliesSnapshot(t *testing.T) {
	c := stagingContainer()
	uc, st := newUseCase(t, c)
	snapshot := snapshotOf(c)
	snapshot.VideoTracks[0].Staging = &models.StagingData[models.VideoMetadata]{ToAdd: &models.VideoMetadata{DurationMs: 2, Width: 640, Height: 360}}
	snapshot.AudioTracks[0].Staging = &models.StagingData[models.AudioMetadata]{ToDelete: true}
	snapshot.AudioTracks[1].Staging = nil

	res, err := uc.SaveStaging(accountCtx("acc"), "c-1", snapshot)
	if err != nil || !res.Success {
		t.Fatalf("SaveStaging = %+v, %v", res, err)
	}
	got := res.Container
	if md, ok := got.VideoTracks[0].StagedAdd(); !ok || md.Width != 640 {
		t.Fatalf("video staging = %+v", got.VideoTracks[0].Staging)
	}
	if len(got.AudioTracks) != 1 || !got.AudioTracks[0].StagedDelete() {
		t.Fatalf("audio tracks = %+v", got.AudioTracks)
	}
	want := []string{"DELETE_KEY acc/c-1/a2/", "USAGE_END acc/c-1/a2/"}
	if keys := taskKeys(st); !reflect.DeepEqual(keys, want) {
		t.Fatalf("tasks = %v, want %v", keys, want)
	}
}

func TestSaveStagingRejectsDeleteOfUncommitted(t *testing.T) {
	c := stagingContainer()
	uc, st := newUseCase(t, c)
	before := stored(t, st)
	snapshot := snapshotOf(c)
	snapshot.AudioTracks[1].Staging = &models.StagingData[models.AudioMetadata]{ToDelete: true}

	if _, err := uc.SaveStaging(accountCtx("acc"), "c-1", snapshot); !httperrors.IsBadRequest(err) {
		t.Fatalf("err = %v, want BadRequest", err)
	}
	if after := stored(t, st); string(after) != string(before) {
		t.Fatalf("container changed")
	}
}
