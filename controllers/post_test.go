package controllers_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"photo-board/blobstore"
	"photo-board/mocks"
	"photo-board/models"
	"photo-board/repositories"
	"photo-board/routes"
	"photo-board/services"
	"photo-board/templates"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	pngBytes       = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	timestampRegex = regexp.MustCompile(`\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}`)
	storedRegex    = regexp.MustCompile(`^[0-9a-f-]{36}\.photo\.png$`)
)

type board struct {
	router     *gin.Engine
	repository repositories.MessageRepository
	uploadDir  string
}

func testConfig(uploadDir string) models.Config {
	return models.Config{
		BlobDriver:           models.BlobDriverDisk,
		UploadDir:            uploadDir,
		DisplayTimezone:      "Asia/Tokyo",
		RecentLimit:          5,
		MaxUploadSize:        1 << 20,
		RetryInitialInterval: time.Millisecond,
		RetryBackoffFactor:   1.1,
		RetryMaxInterval:     2 * time.Millisecond,
		RetryMaxAttempts:     2,
		RetryMaxElapsed:      time.Second,
	}
}

func newRouter(t *testing.T, config models.Config, repository repositories.MessageRepository, store blobstore.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.DiscardHandler)

	loc, err := config.Location()
	require.NoError(t, err)
	uploader := blobstore.NewUploader(store, config.RetryPolicy(), log)

	r := gin.New()
	routes.PhotoBoardRouter(r, routes.Dependencies{
		Config:    config,
		Service:   services.NewMessageService(repository, uploader, log, config.MaxUploadSize),
		Formatter: templates.NewFormatter(loc, config.StorageBasePath()),
		Log:       log,
	})
	return r
}

func newBoard(t *testing.T) board {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := repositories.NewBadgerMessageRepository(db, slog.New(slog.DiscardHandler))
	req.NoError(err)
	t.Cleanup(func() {
		_ = repository.Close()
		_ = db.Close()
	})

	uploadDir := t.TempDir()
	store, err := blobstore.NewDiskStore(uploadDir)
	req.NoError(err)

	return board{
		router:     newRouter(t, testConfig(uploadDir), repository, store),
		repository: repository,
		uploadDir:  uploadDir,
	}
}

func postForm(t *testing.T, name, message, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("input_name", name))
	require.NoError(t, w.WriteField("input_message", message))
	if filename != "" {
		part, err := w.CreateFormFile("input_photo", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/post", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func serve(router http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func uploadedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPost_TextOnly(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	w := serve(b.router, postForm(t, "Ann", "Hello", "", nil))
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "Ann")
	req.Regexp(timestampRegex, w.Body.String())

	recent, err := b.repository.Recent(context.Background(), 1)
	req.NoError(err)
	req.Len(recent, 1)
	req.Equal("Ann", recent[0].Name)
	req.Equal("Hello", recent[0].Text)
	req.False(recent[0].HasImage())
}

func TestPost_URLEncodedForm(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	form := url.Values{"input_name": {"Ann"}, "input_message": {"Hello"}}
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(b.router, r)
	req.Equal(http.StatusOK, w.Code)

	recent, err := b.repository.Recent(context.Background(), 5)
	req.NoError(err)
	req.Len(recent, 1)
}

func TestPost_EmptyNameRedirects(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	w := serve(b.router, postForm(t, "", "Hi", "", nil))
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/messages", w.Header().Get("Location"))

	recent, err := b.repository.Recent(context.Background(), 5)
	req.NoError(err)
	req.Empty(recent)
}

func TestPost_BadExtensionRedirectsWithoutUpload(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	w := serve(b.router, postForm(t, "Bob", "pic", "photo.bmp", []byte("BM....")))
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/messages", w.Header().Get("Location"))
	req.Empty(uploadedFiles(t, b.uploadDir))

	recent, err := b.repository.Recent(context.Background(), 5)
	req.NoError(err)
	req.Empty(recent)
}

func TestPost_WithImage(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	w := serve(b.router, postForm(t, "Cy", "pic", "photo.png", pngBytes))
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "Cy")

	recent, err := b.repository.Recent(context.Background(), 1)
	req.NoError(err)
	req.Len(recent, 1)
	ref := recent[0].ImageRef
	req.Regexp(storedRegex, ref)
	req.Equal([]string{ref}, uploadedFiles(t, b.uploadDir))

	stored, err := os.ReadFile(filepath.Join(b.uploadDir, ref))
	req.NoError(err)
	req.Equal(pngBytes, stored)

	page := serve(b.router, httptest.NewRequest(http.MethodGet, "/messages", nil))
	req.Equal(http.StatusOK, page.Code)
	req.Contains(page.Body.String(), `src="/uploads/`+ref+`"`)

	image := serve(b.router, httptest.NewRequest(http.MethodGet, "/uploads/"+ref, nil))
	req.Equal(http.StatusOK, image.Code)
	req.Equal(pngBytes, image.Body.Bytes())
}

func TestPost_TooLargeImageRedirects(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	w := serve(b.router, postForm(t, "Cy", "big", "photo.png", make([]byte, 2<<20)))
	req.Equal(http.StatusFound, w.Code)
	req.Empty(uploadedFiles(t, b.uploadDir))
}

func TestPost_UploadFailureShowsError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	repository := mocks.NewMockMessageRepository(ctrl)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("bucket unavailable")).Times(2)

	router := newRouter(t, testConfig(t.TempDir()), repository, store)
	w := serve(router, postForm(t, "Cy", "pic", "photo.png", pngBytes))
	req.Equal(http.StatusInternalServerError, w.Code)
	req.Contains(w.Body.String(), "could not be uploaded")
}

func TestPost_PersistenceFailureShowsError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	repository := mocks.NewMockMessageRepository(ctrl)
	gomock.InOrder(
		store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), "image/png", true).Return(nil),
		repository.EXPECT().Create(gomock.Any(), "Cy", "pic", gomock.Any()).
			Return(models.Message{}, errors.New("disk full")),
	)

	router := newRouter(t, testConfig(t.TempDir()), repository, store)
	w := serve(router, postForm(t, "Cy", "pic", "photo.png", pngBytes))
	req.Equal(http.StatusInternalServerError, w.Code)
	req.Contains(w.Body.String(), "could not be saved")
}

func TestMessages_ShowsLastFiveOldestFirst(t *testing.T) {
	req := require.New(t)
	b := newBoard(t)

	names := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	for _, name := range names {
		w := serve(b.router, postForm(t, name, "line one\nline <two>", "", nil))
		req.Equal(http.StatusOK, w.Code)
	}

	w := serve(b.router, httptest.NewRequest(http.MethodGet, "/messages", nil))
	req.Equal(http.StatusOK, w.Code)
	body := w.Body.String()

	req.NotContains(body, ">u1<")
	req.NotContains(body, ">u2<")
	last := -1
	for _, name := range names[2:] {
		i := strings.Index(body, ">"+name+"<")
		req.Greater(i, last, name)
		last = i
	}
	req.Contains(body, "line one<br>line &lt;two&gt;")
	req.Equal(5, strings.Count(body, `class="message"`))
}
