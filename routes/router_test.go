package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/storage"
	"github.com/cppla/blogicum/testutil"
	"github.com/cppla/blogicum/utils"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pageBody struct {
	Page struct {
		Items    []models.Post `json:"items"`
		Number   int           `json:"number"`
		NumPages int           `json:"num_pages"`
		Total    int64         `json:"total"`
	} `json:"page"`
}

type harness struct {
	t      *testing.T
	db     *gorm.DB
	fx     *testutil.Fixtures
	router *gin.Engine
	tokens *utils.TokenService
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	uploadDir := t.TempDir()
	st, err := storage.NewLocal(uploadDir, "/media/posts_images")
	require.NoError(t, err)

	cfg := config.AppConfig{
		GinMode:        "test",
		LoginURL:       "/auth/login",
		AdminUsernames: []string{"admin"},
		UploadDir:      uploadDir,
		UploadURLBase:  "/media/posts_images",
		MaxImageSizeMB: 1,
		AboutTitle:     "About",
		AboutHTML:      "<p>about</p>",
		RulesTitle:     "Rules",
		RulesHTML:      "<p>rules</p>",
	}
	h := &harness{
		t:      t,
		db:     db,
		fx:     testutil.NewFixtures(t, db),
		tokens: utils.NewTokenService("test-secret", time.Hour),
		now:    time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC),
	}
	h.router = SetupRouter(Dependencies{
		Config:    cfg,
		Repos:     repository.New(db),
		Storage:   st,
		Cache:     utils.NewCache(nil, 0),
		Tokens:    h.tokens,
		Blacklist: utils.NewTokenBlacklist(nil),
		Now:       func() time.Time { return h.now },
	})
	return h
}

func (h *harness) request(method, path string, body io.Reader, contentType string, user *models.User) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != nil {
		token, err := h.tokens.Generate(user.ID, user.Username)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) get(path string, user *models.User) *httptest.ResponseRecorder {
	return h.request(http.MethodGet, path, nil, "", user)
}

func (h *harness) send(method, path string, payload interface{}, user *models.User) *httptest.ResponseRecorder {
	h.t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(h.t, err)
	return h.request(method, path, bytes.NewReader(b), "application/json", user)
}

func (h *harness) post(path string, payload interface{}, user *models.User) *httptest.ResponseRecorder {
	return h.send(http.MethodPost, path, payload, user)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	var out T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	}
	return out
}

func titlesOf(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func urlf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func TestIndex_OnlyVisiblePostsPaginated(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	open := h.fx.Category("open", true)
	closed := h.fx.Category("closed", false)
	for i := 0; i < 12; i++ {
		h.fx.Post(urlf("visible-%02d", i), author, open, h.now.Add(-time.Duration(12-i)*time.Hour), true)
	}
	h.fx.Post("draft", author, open, h.now.Add(-time.Hour), false)
	h.fx.Post("scheduled", author, open, h.now.Add(time.Hour), true)
	h.fx.Post("hidden category", author, closed, h.now.Add(-time.Hour), true)

	w := h.get("/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[pageBody](t, w)
	assert.Len(t, body.Page.Items, 10)
	assert.Equal(t, "visible-11", body.Page.Items[0].Title)
	assert.Equal(t, 2, body.Page.NumPages)
	assert.Equal(t, int64(12), body.Page.Total)

	w = h.get("/?page=99", nil)
	body = decode[pageBody](t, w)
	assert.Equal(t, 2, body.Page.Number)
	assert.Equal(t, []string{"visible-01", "visible-00"}, titlesOf(body.Page.Items))

	w = h.get("/?page=abc", nil)
	body = decode[pageBody](t, w)
	assert.Equal(t, 1, body.Page.Number)
}

func TestScheduledPost_AuthorOnlyUntilPubDate(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	stranger := h.fx.User("stranger")
	cat := h.fx.Category("news", true)
	post := h.fx.Post("tomorrow", author, cat, h.now.Add(24*time.Hour), true)
	detail := urlf("/posts/%d", post.ID)

	assert.Equal(t, http.StatusOK, h.get(detail, author).Code)
	assert.Equal(t, http.StatusNotFound, h.get(detail, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.get(detail, stranger).Code)
	assert.Empty(t, decode[pageBody](t, h.get("/", nil)).Page.Items)

	h.now = h.now.Add(25 * time.Hour)
	assert.Equal(t, http.StatusOK, h.get(detail, nil).Code)
	assert.Equal(t, []string{"tomorrow"}, titlesOf(decode[pageBody](t, h.get("/", nil)).Page.Items))
}

func TestPostDetail_CommentsOldestFirstAndForm(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	post := h.fx.Post("p", author, h.fx.Category("news", true), h.now.Add(-time.Hour), true)
	h.fx.Comment("second", post, author, h.now.Add(-time.Minute))
	h.fx.Comment("first", post, author, h.now.Add(-time.Hour))

	type detailBody struct {
		Post     models.Post      `json:"post"`
		Comments []models.Comment `json:"comments"`
		Form     *struct {
			Text string `json:"text"`
		} `json:"form"`
	}

	anon := decode[detailBody](t, h.get(urlf("/posts/%d", post.ID), nil))
	require.Len(t, anon.Comments, 2)
	assert.Equal(t, "first", anon.Comments[0].Text)
	assert.Equal(t, "author", anon.Comments[0].Author.Username)
	assert.Nil(t, anon.Form)

	authed := decode[detailBody](t, h.get(urlf("/posts/%d", post.ID), author))
	require.NotNil(t, authed.Form)
	assert.Equal(t, "", authed.Form.Text)

	assert.Equal(t, http.StatusNotFound, h.get("/posts/999", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.get("/posts/abc", nil).Code)
}

func TestCategoryPage(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	travel := h.fx.Category("travel", true)
	h.fx.Category("secret", false)
	h.fx.Post("trip", author, travel, h.now.Add(-time.Hour), true)
	h.fx.Post("draft trip", author, travel, h.now.Add(-time.Hour), false)

	w := h.get("/category/travel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"trip"}, titlesOf(decode[pageBody](t, w).Page.Items))

	assert.Equal(t, http.StatusNotFound, h.get("/category/secret", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.get("/category/missing", nil).Code)
}

func TestProfile_OwnerSeesHiddenPosts(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	other := h.fx.User("other")
	cat := h.fx.Category("news", true)
	h.fx.Post("public", author, cat, h.now.Add(-time.Hour), true)
	h.fx.Post("draft", author, cat, h.now.Add(-2*time.Hour), false)

	assert.Equal(t, []string{"public", "draft"}, titlesOf(decode[pageBody](t, h.get("/profile/author", author)).Page.Items))
	assert.Equal(t, []string{"public"}, titlesOf(decode[pageBody](t, h.get("/profile/author", other)).Page.Items))
	assert.Equal(t, []string{"public"}, titlesOf(decode[pageBody](t, h.get("/profile/author", nil)).Page.Items))
	assert.Equal(t, http.StatusNotFound, h.get("/profile/nobody", nil).Code)
}

func TestCreatePost(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("leo")
	cat := h.fx.Category("news", true)
	loc := h.fx.Location("Yasnaya Polyana")

	w := h.get("/posts/new", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fposts%2Fnew", w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, h.get("/posts/new", author).Code)

	w = h.post("/posts/new", gin.H{"title": "War", "text": "<p>Peace</p><script>x</script>", "category": cat.ID, "location": loc.ID, "pub_date": "2025-01-05T10:00"}, author)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/profile/leo", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, h.db.Where("title = ?", "War").First(&post).Error)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.True(t, post.IsPublished)
	assert.Equal(t, "<p>Peace</p>", post.Text)
	require.NotNil(t, post.LocationID)
	assert.Equal(t, loc.ID, *post.LocationID)
	assert.True(t, post.PubDate.Equal(time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, http.StatusBadRequest, h.post("/posts/new", gin.H{"title": "No category", "text": "t"}, author).Code)
	assert.Equal(t, http.StatusBadRequest, h.post("/posts/new", gin.H{"title": "", "text": "t", "category": cat.ID}, author).Code)
	assert.Equal(t, http.StatusBadRequest, h.post("/posts/new", gin.H{"title": "x", "text": "t", "category": 999}, author).Code)
}

func TestCreatePost_WithImage(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("leo")
	cat := h.fx.Category("news", true)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Pictured"))
	require.NoError(t, mw.WriteField("text", "with a picture"))
	require.NoError(t, mw.WriteField("category", fmt.Sprint(cat.ID)))
	part, err := mw.CreateFormFile("image", "cat.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := h.request(http.MethodPost, "/posts/new", &body, mw.FormDataContentType(), author)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var post models.Post
	require.NoError(t, h.db.Where("title = ?", "Pictured").First(&post).Error)
	assert.True(t, strings.HasPrefix(post.Image, "/media/posts_images/2025/01/04/"), post.Image)
	assert.NotEmpty(t, post.ImageKey)

	assert.Equal(t, http.StatusOK, h.get(post.Image, nil).Code)
}

func TestEditPost(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	other := h.fx.User("other")
	cat := h.fx.Category("news", true)
	post := h.fx.Post("original", author, cat, h.now.Add(-time.Hour), true)
	edit := urlf("/posts/%d/edit", post.ID)
	change := gin.H{"title": "changed", "text": "new text", "category": cat.ID}

	w := h.post(edit, change, other)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, urlf("/posts/%d", post.ID), w.Header().Get("Location"))
	w = h.get(edit, other)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var stored models.Post
	require.NoError(t, h.db.First(&stored, post.ID).Error)
	assert.Equal(t, "original", stored.Title)

	assert.Equal(t, http.StatusNotFound, h.post("/posts/999/edit", change, author).Code)
	assert.Equal(t, http.StatusOK, h.get(edit, author).Code)

	w = h.post(edit, change, author)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, urlf("/posts/%d", post.ID), w.Header().Get("Location"))
	require.NoError(t, h.db.First(&stored, post.ID).Error)
	assert.Equal(t, "changed", stored.Title)
	assert.True(t, stored.PubDate.Equal(post.PubDate), "pub_date kept when omitted")
}

func TestDeletePost(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	other := h.fx.User("other")
	admin := h.fx.User("admin")
	cat := h.fx.Category("news", true)
	mine := h.fx.Post("mine", author, cat, h.now.Add(-time.Hour), true)
	spam := h.fx.Post("spam", author, cat, h.now.Add(-time.Hour), true)
	h.fx.Comment("c", mine, other, h.now)

	assert.Equal(t, http.StatusNotFound, h.post(urlf("/posts/%d/delete", mine.ID), nil, other).Code)
	assert.Equal(t, http.StatusNotFound, h.get(urlf("/posts/%d/delete", mine.ID), other).Code)
	assert.Equal(t, http.StatusOK, h.get(urlf("/posts/%d/delete", mine.ID), author).Code)

	w := h.post(urlf("/posts/%d/delete", mine.ID), nil, author)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/author", w.Header().Get("Location"))

	var n int64
	require.NoError(t, h.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)

	w = h.post(urlf("/posts/%d/delete", spam.ID), nil, admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.NoError(t, h.db.Model(&models.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestComments(t *testing.T) {
	h := newHarness(t)
	x := h.fx.User("x")
	y := h.fx.User("y")
	admin := h.fx.User("admin")
	cat := h.fx.Category("news", true)
	post := h.fx.Post("p", x, cat, h.now.Add(-time.Hour), true)
	draft := h.fx.Post("draft", x, cat, h.now.Add(-time.Hour), false)

	w := h.post(urlf("/posts/%d/comment", post.ID), gin.H{"text": "hello"}, y)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, urlf("/posts/%d", post.ID), w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, h.post(urlf("/posts/%d/comment", draft.ID), gin.H{"text": "hi"}, y).Code)
	assert.Equal(t, http.StatusSeeOther, h.post(urlf("/posts/%d/comment", draft.ID), gin.H{"text": "note"}, x).Code)
	assert.Equal(t, http.StatusBadRequest, h.post(urlf("/posts/%d/comment", post.ID), gin.H{"text": "  "}, y).Code)

	var comment models.Comment
	require.NoError(t, h.db.Where("text = ?", "hello").First(&comment).Error)
	edit := urlf("/posts/%d/comment/%d/edit", post.ID, comment.ID)
	del := urlf("/posts/%d/comment/%d/delete", post.ID, comment.ID)

	// post author and admins cannot edit someone else's comment
	assert.Equal(t, http.StatusNotFound, h.get(edit, x).Code)
	assert.Equal(t, http.StatusNotFound, h.post(edit, gin.H{"text": "hijack"}, x).Code)
	assert.Equal(t, http.StatusNotFound, h.post(edit, gin.H{"text": "hijack"}, admin).Code)
	assert.Equal(t, http.StatusNotFound, h.post(urlf("/posts/%d/comment/%d/edit", draft.ID, comment.ID), gin.H{"text": "moved"}, y).Code)

	w = h.post(edit, gin.H{"text": "hello again"}, y)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.NoError(t, h.db.First(&comment, comment.ID).Error)
	assert.Equal(t, "hello again", comment.Text)

	assert.Equal(t, http.StatusNotFound, h.post(del, nil, x).Code)
	assert.Equal(t, http.StatusOK, h.get(del, y).Code)
	w = h.post(del, nil, admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.ErrorIs(t, h.db.First(&comment, comment.ID).Error, gorm.ErrRecordNotFound)
}

func TestEditProfile(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	h.fx.User("taken")

	assert.Equal(t, http.StatusSeeOther, h.get("/profile/edit", nil).Code)
	assert.Equal(t, http.StatusOK, h.get("/profile/edit", leo).Code)

	w := h.post("/profile/edit", gin.H{"username": "taken"}, leo)
	assert.Equal(t, http.StatusConflict, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, utils.CodeConflict, env.Code)

	assert.Equal(t, http.StatusBadRequest, h.post("/profile/edit", gin.H{"username": "bad name"}, leo).Code)
	assert.Equal(t, http.StatusBadRequest, h.post("/profile/edit", gin.H{"username": "leo", "email": "nope"}, leo).Code)

	w = h.post("/profile/edit", gin.H{"username": "lev", "first_name": "Lev", "last_name": "Tolstoy", "email": "lev@example.com"}, leo)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/lev", w.Header().Get("Location"))

	var stored models.User
	require.NoError(t, h.db.First(&stored, leo.ID).Error)
	assert.Equal(t, "lev", stored.Username)
	assert.Equal(t, "Lev Tolstoy", stored.FullName())
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)
	cat := h.fx.Category("news", true)

	w := h.post("/auth/register", gin.H{"username": "leo", "password": "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.post("/auth/register", gin.H{"username": "leo", "password": "war-and-peace", "email": "leo@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, h.post("/auth/register", gin.H{"username": "leo", "password": "war-and-peace"}, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, h.post("/auth/login", gin.H{"username": "leo", "password": "wrong-pass"}, nil).Code)
	w = h.post("/auth/login?next=/posts/new", gin.H{"username": "leo", "password": "war-and-peace"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[struct {
		Token     string `json:"token"`
		CSRFToken string `json:"csrf_token"`
		Next      string `json:"next"`
	}](t, w)
	assert.Equal(t, "/posts/new", login.Next)

	var tokenCookie, csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		switch c.Name {
		case middleware.TokenCookie:
			tokenCookie = c
		case middleware.CSRFCookie:
			csrfCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	require.NotNil(t, csrfCookie)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, login.CSRFToken, csrfCookie.Value)

	create := func(csrfHeader string) int {
		b, _ := json.Marshal(gin.H{"title": "via cookie", "text": "t", "category": cat.ID})
		req := httptest.NewRequest(http.MethodPost, "/posts/new", bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(tokenCookie)
		req.AddCookie(csrfCookie)
		if csrfHeader != "" {
			req.Header.Set(middleware.CSRFHeader, csrfHeader)
		}
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusForbidden, create(""))
	assert.Equal(t, http.StatusForbidden, create("forged"))
	assert.Equal(t, http.StatusSeeOther, create(login.CSRFToken))

	me := func() int {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, me())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusSeeOther, me())
}

func TestAdmin(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.User("admin")
	author := h.fx.User("author")

	assert.Equal(t, http.StatusNotFound, h.get("/admin/categories", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.get("/admin/categories", author).Code)
	assert.Equal(t, http.StatusOK, h.get("/admin/categories", admin).Code)

	w := h.post("/admin/categories", gin.H{"title": "Travel", "description": "Trips", "slug": "travel"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[struct {
		Category models.Category `json:"category"`
	}](t, w).Category
	assert.True(t, created.IsPublished)
	assert.Equal(t, http.StatusConflict, h.post("/admin/categories", gin.H{"title": "Dup", "slug": "travel"}, admin).Code)
	assert.Equal(t, http.StatusBadRequest, h.post("/admin/categories", gin.H{"title": "Bad", "slug": "путешествия"}, admin).Code)

	w = h.send(http.MethodPut, urlf("/admin/categories/%d", created.ID), gin.H{"title": "Travel", "slug": "travel", "is_published": false}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, h.get("/category/travel", nil).Code)

	w = h.post("/admin/locations", gin.H{"name": "Moscow"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	cat := h.fx.Category("news", true)
	post := h.fx.Post("p", author, cat, h.now.Add(-time.Hour), true)
	w = h.send(http.MethodPatch, urlf("/admin/posts/%d/publish", post.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, h.get(urlf("/posts/%d", post.ID), nil).Code)
	w = h.send(http.MethodPatch, urlf("/admin/posts/%d/publish", post.ID), gin.H{"is_published": true}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, h.get(urlf("/posts/%d", post.ID), nil).Code)

	w = h.send(http.MethodDelete, urlf("/admin/categories/%d", cat.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, h.get(urlf("/posts/%d", post.ID), nil).Code, "post without category is not visible")
	assert.Equal(t, http.StatusOK, h.get(urlf("/posts/%d", post.ID), author).Code)

	w = h.send(http.MethodDelete, urlf("/admin/users/%d", author.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, h.get("/profile/author", nil).Code)
}

func TestPagesStatsAndNotFound(t *testing.T) {
	h := newHarness(t)
	author := h.fx.User("author")
	cat := h.fx.Category("news", true)
	h.fx.Post("visible", author, cat, h.now.Add(-time.Hour), true)
	h.fx.Post("draft", author, cat, h.now.Add(-time.Hour), false)

	about := decode[map[string]string](t, h.get("/pages/about", nil))
	assert.Equal(t, "About", about["title"])
	assert.Equal(t, http.StatusOK, h.get("/pages/rules", nil).Code)
	assert.Equal(t, http.StatusOK, h.get("/health", nil).Code)

	stats := decode[map[string]int64](t, h.get("/stats", nil))
	assert.Equal(t, int64(1), stats["post_count"])
	assert.Equal(t, int64(1), stats["user_count"])

	w := h.get("/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, utils.CodeNotFound, env.Code)
}
