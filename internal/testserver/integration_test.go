package testserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"parley/internal/api"
	"parley/internal/config"
	"parley/internal/forum"
	"parley/internal/models"
	"parley/internal/session"
	"parley/internal/testserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	server   *testserver.Server
	client   *api.Client
	sessions *session.Store
	svc      *forum.Service
	baseURL  string
}

func newStack(t *testing.T) *stack {
	t.Helper()

	server, err := testserver.New()
	require.NoError(t, err)
	baseURL, shutdown, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(shutdown)

	client, err := api.New(&config.Config{
		ServerURL:      baseURL,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	sessions := session.NewStore(client, filepath.Join(t.TempDir(), "session.json"))
	client.OnAuthExpired(sessions.ForceLogout)

	return &stack{
		server:   server,
		client:   client,
		sessions: sessions,
		svc:      forum.NewService(client, sessions),
		baseURL:  baseURL,
	}
}

func (s *stack) loginAs(t *testing.T, username, password string, admin bool) {
	t.Helper()
	_, err := s.server.SeedUser(username, password, admin)
	require.NoError(t, err)
	_, err = s.sessions.Login(context.Background(), models.Credentials{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()

	sess, err := s.sessions.CreateAccount(ctx, models.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated)
	assert.Equal(t, "alice", sess.User.Username)
	assert.Empty(t, sess.User.Password)
	assert.Equal(t, 0, sess.User.IsAdmin)

	// The same username again is a conflict, surfaced verbatim.
	_, err = s.sessions.CreateAccount(ctx, models.Credentials{Username: "alice", Password: "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already taken")

	s.sessions.Logout(ctx)
	assert.False(t, s.sessions.Current().IsAuthenticated)

	_, err = s.sessions.Login(ctx, models.Credentials{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.False(t, s.sessions.Current().IsAuthenticated)

	_, err = s.sessions.Login(ctx, models.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	assert.True(t, s.sessions.Current().IsAuthenticated)
}

func TestPostLifecycle(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()
	s.loginAs(t, "alice", "pw", false)

	created, err := s.svc.CreatePost(ctx, "Hello", "general", "first!")
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, "alice", created.Username)

	posts, err := s.svc.RefreshPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	fetched, err := s.svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first!", fetched.Content)

	require.NoError(t, s.svc.UpdatePost(ctx, *fetched, "Hello again", "general", "edited"))
	fetched, err = s.svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", fetched.Title)
	assert.Equal(t, "edited", fetched.Content)

	require.NoError(t, s.svc.DeletePost(ctx, *fetched))
	_, err = s.svc.GetPost(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCommentThreading(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()
	s.loginAs(t, "alice", "pw", false)

	post, err := s.svc.CreatePost(ctx, "Threading", "general", "body")
	require.NoError(t, err)

	top, err := s.svc.TopLevelComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, top, "a fresh post has an empty, not missing, generation")

	parent, err := s.svc.AddComment(ctx, post.ID, "top level")
	require.NoError(t, err)
	assert.Nil(t, parent.ParentID)

	reply, err := s.svc.Reply(ctx, post.ID, parent.ID, "a reply")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	// The reply shows up under its parent, not at the top level.
	top, err = s.svc.TopLevelComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, parent.ID, top[0].ID)

	children, err := s.svc.ChildrenOf(ctx, post.ID, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, reply.ID, children[0].ID)

	// One generation per fetch: the reply's own children need their own call.
	grandchildren, err := s.svc.ChildrenOf(ctx, post.ID, reply.ID)
	require.NoError(t, err)
	assert.Empty(t, grandchildren)
}

func TestCommentEditAndCascadeDelete(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()
	s.loginAs(t, "alice", "pw", false)

	post, err := s.svc.CreatePost(ctx, "Cascade", "general", "body")
	require.NoError(t, err)
	parent, err := s.svc.AddComment(ctx, post.ID, "parent")
	require.NoError(t, err)
	child, err := s.svc.Reply(ctx, post.ID, parent.ID, "child")
	require.NoError(t, err)
	_, err = s.svc.Reply(ctx, post.ID, child.ID, "grandchild")
	require.NoError(t, err)

	require.NoError(t, s.svc.EditComment(ctx, *parent, "parent, edited"))
	fetched, err := s.svc.GetComment(ctx, post.ID, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "parent, edited", fetched.Content)
	assert.Equal(t, parent.Username, fetched.Username)

	// Deleting the parent takes the whole subtree with it.
	require.NoError(t, s.svc.DeleteComment(ctx, *fetched))

	var remaining int64
	require.NoError(t, s.server.DB().Model(&models.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestCrossPostReplyRejected(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()
	s.loginAs(t, "alice", "pw", false)

	postA, err := s.svc.CreatePost(ctx, "A", "general", "body")
	require.NoError(t, err)
	postB, err := s.svc.CreatePost(ctx, "B", "general", "body")
	require.NoError(t, err)
	comment, err := s.svc.AddComment(ctx, postA.ID, "on A")
	require.NoError(t, err)

	_, err = s.svc.Reply(ctx, postB.ID, comment.ID, "crossing over")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestOwnershipEnforcedEndToEnd(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()

	s.loginAs(t, "alice", "pw", false)
	post, err := s.svc.CreatePost(ctx, "Mine", "general", "body")
	require.NoError(t, err)

	// bob sees alice's post but cannot touch it.
	s.loginAs(t, "bob", "pw", false)
	err = s.svc.UpdatePost(ctx, *post, "Stolen", "general", "body")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	// An admin can.
	s.loginAs(t, "root", "pw", true)
	require.NoError(t, s.svc.UpdatePost(ctx, *post, "Moderated", "general", "body"))
	fetched, err := s.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moderated", fetched.Title)
}

func TestTopicAdministration(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()

	s.loginAs(t, "root", "pw", true)
	_, err := s.svc.AddTopic(ctx, "go")
	require.NoError(t, err)

	_, err = s.svc.AddTopic(ctx, "go")
	require.Error(t, err, "duplicate topic is a conflict")

	_, err = s.svc.AddTopic(ctx, models.ReservedTopic)
	require.Error(t, err, "the catch-all name is reserved")

	post, err := s.svc.CreatePost(ctx, "On go", "go", "body")
	require.NoError(t, err)
	_, err = s.svc.AddComment(ctx, post.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, s.svc.RemoveTopic(ctx, "go"))

	// The topic's posts and their comments are gone with it.
	_, err = s.svc.GetPost(ctx, post.ID)
	require.Error(t, err)
	var comments int64
	require.NoError(t, s.server.DB().Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)

	topics, err := s.svc.RefreshTopics(ctx)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestExpiredSessionForcesLogout(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()
	s.loginAs(t, "alice", "pw", false)

	// The server stops honoring the cookie; the next authenticated call both
	// fails and clears the local session.
	s.client.SetSessionToken("garbage")

	_, err := s.svc.CreatePost(ctx, "Nope", "general", "body")
	require.Error(t, err)
	assert.True(t, models.IsAuthRequired(err))
	assert.False(t, s.sessions.Current().IsAuthenticated)

	// Follow-up writes are now blocked locally, before the wire.
	_, err = s.svc.AddComment(ctx, 1, "still here?")
	require.Error(t, err)
	assert.True(t, models.IsAuthRequired(err))
}

func TestSessionSurvivesRestart(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()

	file := filepath.Join(t.TempDir(), "session.json")
	sessions := session.NewStore(s.client, file)
	s.client.OnAuthExpired(sessions.ForceLogout)

	_, err := s.server.SeedUser("alice", "pw", false)
	require.NoError(t, err)
	_, err = sessions.Login(ctx, models.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	// A second client, fresh cookie jar, same persisted file.
	client2, err := api.New(&config.Config{ServerURL: s.baseURL, RequestTimeout: 5 * time.Second})
	require.NoError(t, err)
	restored := session.NewStore(client2, file)
	sess := restored.Restore()
	require.True(t, sess.IsAuthenticated)

	// The restored identity can write.
	svc2 := forum.NewService(client2, restored)
	created, err := svc2.CreatePost(ctx, "Back", "general", "still me")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
}

func TestDuplicateSubmissionAppliedOnce(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()
	s.loginAs(t, "alice", "pw", false)

	post, err := s.svc.CreatePost(ctx, "Dupes", "general", "body")
	require.NoError(t, err)

	// Re-send the same mutation with the same idempotency key, as a retry
	// after a lost response would.
	body, err := json.Marshal(models.Comment{Content: "exactly once"})
	require.NoError(t, err)

	send := func() *http.Response {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.baseURL+"/api/posts/"+strconv.FormatUint(uint64(post.ID), 10)+"/comments",
			bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(api.IdempotencyHeader, "retry-key-1")
		req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: s.client.SessionToken()})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	first := send()
	defer first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)
	var firstComment models.Comment
	require.NoError(t, json.NewDecoder(first.Body).Decode(&firstComment))

	second := send()
	defer second.Body.Close()
	require.Equal(t, http.StatusCreated, second.StatusCode)
	var secondComment models.Comment
	require.NoError(t, json.NewDecoder(second.Body).Decode(&secondComment))
	assert.Equal(t, firstComment.ID, secondComment.ID, "the replay returns the stored response")

	var count int64
	require.NoError(t, s.server.DB().Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUsernameLookup(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	ctx := context.Background()

	user, err := s.server.SeedUser("carol", "pw", false)
	require.NoError(t, err)

	name, err := s.client.Username(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", name)
}
