package routes

import "net/http"

// Notifications handles GET /notifications?unread=1
func Notifications(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		unreadOnly := r.URL.Query().Get("unread") == "1"
		items := d.Notifications.ForUser(userID, unreadOnly)
		writeJSON(w, http.StatusOK, map[string]any{
			"notifications": items,
			"unread_count":  d.Notifications.UnreadCount(userID),
		})
	}
}

// NotificationsMarkRead handles POST /notifications/read
func NotificationsMarkRead(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		changed := d.Notifications.MarkAllRead(userID)
		writeJSON(w, http.StatusOK, map[string]any{"marked_read": changed})
	}
}
