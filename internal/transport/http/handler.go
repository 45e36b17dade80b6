package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/opencircle/social-service/internal/domain"
	"github.com/opencircle/social-service/internal/postgres"
	"github.com/opencircle/social-service/internal/service"
	httpmw "github.com/opencircle/social-service/internal/transport/http/middleware"
	"github.com/opencircle/social-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	chatSvc   *service.ChatService
	feedSvc   *service.FeedService
	notifSvc  *service.NotificationService
	followSvc *service.FollowService
}

func NewHandler(chat *service.ChatService, feed *service.FeedService, notif *service.NotificationService, follow *service.FollowService) *Handler {
	return &Handler{
		chatSvc:   chat,
		feedSvc:   feed,
		notifSvc:  notif,
		followSvc: follow,
	}
}

// GET /posts/feed?cursor=&limit=
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	page, err := h.feedSvc.GetFeed(r.Context(), userID, cursor, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			httputil.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		slog.Error("handler.GetFeed:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := FeedResponse{Posts: make([]FeedItemResponse, 0, len(page.Posts)), NextCursor: page.NextCursor}
	for _, it := range page.Posts {
		resp.Posts = append(resp.Posts, toFeedItem(it))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// POST /chat/message
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ChatID == "" {
		httputil.Error(w, http.StatusBadRequest, "chatId is required")
		return
	}
	senderID := httpmw.UserIDFromCtx(r.Context())

	env, err := h.chatSvc.Send(r.Context(), req.ChatID, senderID, req.ReceiverID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChatNotFound):
			httputil.Error(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("handler.SendMessage:", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, env)
}

// GET /chat/messages/{chatId}?after=&limit=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")

	after := time.Time{}
	if s := r.URL.Query().Get("after"); s != "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid after")
			return
		}
		after = time.UnixMilli(ms)
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	msgs, err := h.chatSvc.History(r.Context(), chatID, after, limit)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			httputil.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		slog.Error("handler.GetMessages:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := MessagesResponse{Items: make([]MessageItem, 0, len(msgs))}
	for _, m := range msgs {
		resp.Items = append(resp.Items, MessageItem{
			ID:         m.ID,
			ChatID:     m.ChatID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GET /chat/public
func (h *Handler) GetPublicChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chatSvc.PublicChat(r.Context())
	if err != nil {
		slog.Error("handler.GetPublicChat:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, toChatItem(chat))
}

// GET /chat/rooms
func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	rooms, err := h.chatSvc.Rooms(r.Context(), userID)
	if err != nil {
		slog.Error("handler.GetRooms:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]RoomItem, 0, len(rooms))
	for _, rm := range rooms {
		item := RoomItem{ChatItem: toChatItem(&rm.Chat)}
		for _, u := range rm.Members {
			item.Members = append(item.Members, service.UserSummary{
				ID: u.ID, Name: u.Name, Username: u.Username, Image: u.Image,
			})
		}
		if rm.LastMessage != nil {
			m := rm.LastMessage
			item.LastMessage = &MessageItem{
				ID:         m.ID,
				ChatID:     m.ChatID,
				SenderID:   m.SenderID,
				ReceiverID: m.ReceiverID,
				Content:    m.Content,
				CreatedAt:  m.CreatedAt,
			}
		}
		items = append(items, item)
	}
	httputil.JSON(w, http.StatusOK, items)
}

// POST /chat/rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.UserIDs) != 2 {
		httputil.Error(w, http.StatusBadRequest, "a private chat has exactly two participants")
		return
	}

	chat, err := h.chatSvc.CreateRoom(r.Context(), req.UserIDs)
	if err != nil {
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, toChatItem(chat))
}

// GET /notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	views, err := h.notifSvc.List(r.Context(), userID, 50)
	if err != nil {
		slog.Error("handler.ListNotifications:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]NotificationItem, 0, len(views))
	for _, v := range views {
		items = append(items, NotificationItem{
			ID:   v.ID,
			Type: string(v.Type),
			Issuer: service.UserSummary{
				ID: v.Issuer.ID, Name: v.Issuer.Name, Username: v.Issuer.Username, Image: v.Issuer.Image,
			},
			PostID:      v.PostID,
			PostContent: v.PostContent,
			CommentID:   v.CommentID,
			Read:        v.Read,
			CreatedAt:   v.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, items)
}

// GET /notifications/unread-count
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	n, err := h.notifSvc.UnreadCount(r.Context(), userID)
	if err != nil {
		slog.Error("handler.GetUnreadCount:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, UnreadCountResponse{Count: n})
}

// POST /notifications/read-all
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	if err := h.notifSvc.MarkAllRead(r.Context(), userID); err != nil {
		slog.Error("handler.MarkAllRead:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

// POST /notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.notifSvc.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			httputil.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		slog.Error("handler.MarkRead:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// POST /profile/{id}/follow
func (h *Handler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	followerID := httpmw.UserIDFromCtx(r.Context())
	followingID := chi.URLParam(r, "id")

	res, err := h.followSvc.Toggle(r.Context(), followerID, followingID)
	if err != nil {
		if errors.Is(err, domain.ErrSelfFollow) {
			httputil.Error(w, http.StatusBadRequest, "you cannot follow yourself")
			return
		}
		slog.Error("handler.ToggleFollow:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

// GET /profile/{id}/followers
func (h *Handler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.followSvc.Followers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("handler.GetFollowers:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, ids)
}

// GET /profile/{id}/following
func (h *Handler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	ids, err := h.followSvc.Following(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("handler.GetFollowing:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, ids)
}

func toChatItem(c *domain.Chat) ChatItem {
	return ChatItem{ID: c.ID, IsPublic: c.IsPublic, CreatedAt: c.CreatedAt}
}

func toFeedItem(it domain.FeedItem) FeedItemResponse {
	resp := FeedItemResponse{
		ID: it.ID,
		Author: service.UserSummary{
			ID: it.Author.ID, Name: it.Author.Name, Username: it.Author.Username, Image: it.Author.Image,
		},
		Content:   it.Content,
		Image:     it.Image,
		IsRepost:  it.IsRepost,
		CreatedAt: it.CreatedAt,
	}
	if it.OriginalPost != nil {
		op := it.OriginalPost
		resp.OriginalPost = &FeedPostResponse{
			ID: op.ID,
			Author: service.UserSummary{
				ID: op.Author.ID, Name: op.Author.Name, Username: op.Author.Username, Image: op.Author.Image,
			},
			Content:   op.Content,
			Image:     op.Image,
			CreatedAt: op.CreatedAt,
		}
	}
	return resp
}
