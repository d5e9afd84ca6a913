package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *HandlersTestSuite) TestSendMessagePersistsAndDelivers() {
	bobConn := s.connect(s.bob)

	w := s.request(s.alice, "POST", "/api/v1/messages/"+s.bob.ID,
		map[string]string{"text": "hello bob"})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var count int64
	s.db.Model(&models.Message{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)

	frames := s.drainFrames(bobConn)

	var gotMessage, gotNotification bool
	for _, f := range frames {
		switch f.Type {
		case realtime.EventTypeNewMessage:
			var msg models.Message
			require.NoError(s.T(), json.Unmarshal(f.Payload, &msg))
			assert.Equal(s.T(), "hello bob", msg.Text)
			assert.Equal(s.T(), s.alice.ID, msg.SenderID)
			gotMessage = true
		case realtime.EventTypeNotification:
			var n realtime.NotificationEvent
			require.NoError(s.T(), json.Unmarshal(f.Payload, &n))
			assert.Equal(s.T(), realtime.NotificationMessage, n.Kind)
			assert.Equal(s.T(), s.alice.ID, n.ActorID)
			gotNotification = true
		}
	}
	assert.True(s.T(), gotMessage, "receiver should get the message event")
	assert.True(s.T(), gotNotification, "receiver should get the preview notification")
}

func (s *HandlersTestSuite) TestSendMessageToOfflineReceiverSucceeds() {
	// no connection for bob; delivery drops, persistence still happens
	w := s.request(s.alice, "POST", "/api/v1/messages/"+s.bob.ID,
		map[string]string{"text": "read this later"})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.request(s.bob, "GET", "/api/v1/messages/"+s.alice.ID, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "read this later")
}

func (s *HandlersTestSuite) TestMessageNotificationTruncatesPreview() {
	bobConn := s.connect(s.bob)

	long := strings.Repeat("x", 80)
	w := s.request(s.alice, "POST", "/api/v1/messages/"+s.bob.ID,
		map[string]string{"text": long})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	notes := s.notifications(bobConn)
	require.Len(s.T(), notes, 1)
	assert.Equal(s.T(), strings.Repeat("x", 50)+"...", notes[0].Text)
}

func (s *HandlersTestSuite) TestSendMessageToSelfRejected() {
	w := s.request(s.alice, "POST", "/api/v1/messages/"+s.alice.ID,
		map[string]string{"text": "note to self"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestLikeNotifiesPostAuthor() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	w := s.request(s.bob, "POST", fmt.Sprintf("/api/v1/posts/%s/like", post.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	notes := s.notifications(aliceConn)
	require.Len(s.T(), notes, 1)
	assert.Equal(s.T(), realtime.NotificationLike, notes[0].Kind)
	assert.Equal(s.T(), s.bob.ID, notes[0].ActorID)
	assert.Equal(s.T(), post.ID, notes[0].PostID)

	var reloaded models.Post
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(s.T(), 1, reloaded.LikeCount)
}

func (s *HandlersTestSuite) TestLikeOwnPostStaysSilent() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	w := s.request(s.alice, "POST", fmt.Sprintf("/api/v1/posts/%s/like", post.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	assert.Empty(s.T(), s.notifications(aliceConn))
}

func (s *HandlersTestSuite) TestLikeIsIdempotent() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	path := fmt.Sprintf("/api/v1/posts/%s/like", post.ID)
	require.Equal(s.T(), http.StatusOK, s.request(s.bob, "POST", path, nil).Code)
	require.Equal(s.T(), http.StatusOK, s.request(s.bob, "POST", path, nil).Code)

	var reloaded models.Post
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(s.T(), 1, reloaded.LikeCount)

	// only the first like notifies
	assert.Len(s.T(), s.notifications(aliceConn), 1)
}

func (s *HandlersTestSuite) TestUnlikeSendsCancellingNotification() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	path := fmt.Sprintf("/api/v1/posts/%s/like", post.ID)
	require.Equal(s.T(), http.StatusOK, s.request(s.bob, "POST", path, nil).Code)
	require.Equal(s.T(), http.StatusOK, s.request(s.bob, "DELETE", path, nil).Code)

	notes := s.notifications(aliceConn)
	require.Len(s.T(), notes, 2)
	assert.Equal(s.T(), realtime.NotificationLike, notes[0].Kind)
	assert.Equal(s.T(), realtime.NotificationDislike, notes[1].Kind)

	// the pair carries the same reconciliation key
	assert.Equal(s.T(), notes[0].ActorID, notes[1].ActorID)
	assert.Equal(s.T(), notes[0].PostID, notes[1].PostID)

	var reloaded models.Post
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(s.T(), 0, reloaded.LikeCount)
}

func (s *HandlersTestSuite) TestUnlikeWithoutLikeStaysSilent() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	w := s.request(s.bob, "DELETE", fmt.Sprintf("/api/v1/posts/%s/like", post.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	assert.Empty(s.T(), s.notifications(aliceConn))
}

func (s *HandlersTestSuite) TestCommentNotifiesPostAuthor() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	w := s.request(s.bob, "POST", fmt.Sprintf("/api/v1/posts/%s/comments", post.ID),
		map[string]string{"text": "great shot"})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	notes := s.notifications(aliceConn)
	require.Len(s.T(), notes, 1)
	assert.Equal(s.T(), realtime.NotificationComment, notes[0].Kind)
	assert.Equal(s.T(), "great shot", notes[0].Text)
	assert.Equal(s.T(), post.ID, notes[0].PostID)

	var reloaded models.Post
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(s.T(), 1, reloaded.CommentCount)
}

func (s *HandlersTestSuite) TestCommentOwnPostStaysSilent() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	w := s.request(s.alice, "POST", fmt.Sprintf("/api/v1/posts/%s/comments", post.ID),
		map[string]string{"text": "my own caption addendum"})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	assert.Empty(s.T(), s.notifications(aliceConn))
}

func (s *HandlersTestSuite) TestBookmarkTogglesWithoutNotification() {
	post := s.createPost(s.alice)
	aliceConn := s.connect(s.alice)

	path := fmt.Sprintf("/api/v1/posts/%s/bookmark", post.ID)

	w := s.request(s.bob, "POST", path, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), `"bookmarked":true`)

	w = s.request(s.bob, "POST", path, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), `"bookmarked":false`)

	assert.Empty(s.T(), s.notifications(aliceConn))
}

func (s *HandlersTestSuite) TestCreateAndDeletePost() {
	w := s.request(s.alice, "POST", "/api/v1/posts", map[string]interface{}{
		"caption":   "sunset",
		"media_url": "https://cdn.test/sunset.jpg",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var created models.Post
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(s.T(), s.alice.ID, created.AuthorID)
	assert.Equal(s.T(), models.MediaTypeImage, created.MediaType)

	// only the author may delete
	w = s.request(s.bob, "DELETE", "/api/v1/posts/"+created.ID, nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.request(s.alice, "DELETE", "/api/v1/posts/"+created.ID, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var count int64
	s.db.Model(&models.Post{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *HandlersTestSuite) TestReelRequiresVideo() {
	w := s.request(s.alice, "POST", "/api/v1/posts", map[string]interface{}{
		"media_url": "https://cdn.test/clip.jpg",
		"is_reel":   true,
	})
	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)

	w = s.request(s.alice, "POST", "/api/v1/posts", map[string]interface{}{
		"media_url":  "https://cdn.test/clip.mp4",
		"media_type": "video",
		"is_reel":    true,
		"duration":   15,
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.request(s.alice, "GET", "/api/v1/posts/reels", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "clip.mp4")
}

func (s *HandlersTestSuite) TestFollowMaintainsCounts() {
	path := "/api/v1/users/" + s.bob.ID + "/follow"

	require.Equal(s.T(), http.StatusOK, s.request(s.alice, "POST", path, nil).Code)
	// repeat follow is a no-op
	require.Equal(s.T(), http.StatusOK, s.request(s.alice, "POST", path, nil).Code)

	var bob, alice models.User
	require.NoError(s.T(), s.db.First(&bob, "id = ?", s.bob.ID).Error)
	require.NoError(s.T(), s.db.First(&alice, "id = ?", s.alice.ID).Error)
	assert.Equal(s.T(), 1, bob.FollowerCount)
	assert.Equal(s.T(), 1, alice.FollowingCount)

	require.Equal(s.T(), http.StatusOK, s.request(s.alice, "DELETE", path, nil).Code)

	require.NoError(s.T(), s.db.First(&bob, "id = ?", s.bob.ID).Error)
	assert.Equal(s.T(), 0, bob.FollowerCount)
}

func (s *HandlersTestSuite) TestFollowSelfRejected() {
	w := s.request(s.alice, "POST", "/api/v1/users/"+s.alice.ID+"/follow", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestPresenceEndpoints() {
	w := s.request(s.alice, "GET", "/api/v1/presence/online", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), `"online":[]`)

	s.connect(s.bob)

	w = s.request(s.alice, "GET", "/api/v1/presence/online", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), s.bob.ID)

	w = s.request(s.alice, "POST", "/api/v1/presence/status", map[string]interface{}{
		"user_ids": []string{s.alice.ID, s.bob.ID},
	})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var resp struct {
		Status map[string]bool `json:"status"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(s.T(), resp.Status[s.alice.ID])
	assert.True(s.T(), resp.Status[s.bob.ID])
}

func (s *HandlersTestSuite) TestRealtimeStatsEndpoint() {
	s.connect(s.alice)

	w := s.request(s.alice, "GET", "/api/v1/realtime/stats", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var stats realtime.StatsSnapshot
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(s.T(), int64(1), stats.ActiveConnections)
}

func (s *HandlersTestSuite) TestUnauthenticatedRequestRejected() {
	w := s.request(nil, "GET", "/api/v1/posts", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}
