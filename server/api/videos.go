package api

import (
	"net/http"

	"github.com/dekarrin/vadm/server/dao"
	"github.com/dekarrin/vadm/server/result"
)

// StatusCompleted is the status of a video whose processing has finished and
// whose report is available.
const StatusCompleted = "completed"

// HTTPGetAllVideos returns a HandlerFunc that lists every video for the admin
// dashboard.
func (api API) HTTPGetAllVideos() http.HandlerFunc {
	return api.endpoint(api.epGetAllVideos)
}

func (api API) epGetAllVideos(req *http.Request) result.Result {
	user := authUser(req)
	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) list videos: forbidden", user.Username, user.Role)
	}

	videos, err := api.Store.Videos().GetAll(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]map[string]interface{}, len(videos))
	for i := range videos {
		resp[i] = videoModel(videos[i])
	}

	return result.OK(resp, "user '%s' got all %d videos", user.Username, len(resp))
}

// HTTPDeleteVideo returns a HandlerFunc that deletes a video from the admin
// dashboard.
func (api API) HTTPDeleteVideo() http.HandlerFunc {
	return api.endpoint(api.epDeleteVideo)
}

func (api API) epDeleteVideo(req *http.Request) result.Result {
	user := authUser(req)
	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete video: forbidden", user.Username, user.Role)
	}

	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound(err.Error())
	}

	deleted, err := api.Store.Videos().Delete(req.Context(), id)
	if err != nil {
		return storeErr(err, "delete video")
	}

	return result.NoContent("user '%s' deleted video '%s'", user.Username, deleted.OriginalFilename)
}

// HTTPGetDashboardReport returns a HandlerFunc that gets the processing report
// of any video. Only an admin can call this endpoint.
func (api API) HTTPGetDashboardReport() http.HandlerFunc {
	return api.endpoint(func(req *http.Request) result.Result {
		return api.getReport(req, true)
	})
}

// HTTPGetHistoryReport returns a HandlerFunc that gets the processing report
// of one of the logged-in user's own videos.
func (api API) HTTPGetHistoryReport() http.HandlerFunc {
	return api.endpoint(func(req *http.Request) result.Result {
		return api.getReport(req, false)
	})
}

func (api API) getReport(req *http.Request, adminOnly bool) result.Result {
	user := authUser(req)
	if adminOnly && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) get dashboard report: forbidden", user.Username, user.Role)
	}

	video, res, ok := api.ownedVideo(req, user)
	if !ok {
		return res
	}

	if video.Status != StatusCompleted || video.Report == nil {
		return result.Conflict("Processing of the video is not complete", "report for video %s requested in status %q", video.ID, video.Status)
	}

	return result.Bytes(video.Report, "application/json", "user '%s' got report of video %s", user.Username, video.ID)
}

// HTTPGetHistory returns a HandlerFunc that lists the logged-in user's own
// videos.
func (api API) HTTPGetHistory() http.HandlerFunc {
	return api.endpoint(api.epGetHistory)
}

func (api API) epGetHistory(req *http.Request) result.Result {
	user := authUser(req)

	videos, err := api.Store.Videos().GetAllByUser(req.Context(), user.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]HistoryModel, len(videos))
	for i := range videos {
		resp[i] = HistoryModel{
			ID:         videos[i].ID.String(),
			Title:      videos[i].OriginalFilename,
			UploadDate: videos[i].UploadedAt,
		}
	}

	return result.OK(resp, "user '%s' got history of %d videos", user.Username, len(resp))
}

// HTTPGetProcessed returns a HandlerFunc that downloads the processed file of
// one of the logged-in user's videos.
func (api API) HTTPGetProcessed() http.HandlerFunc {
	return api.endpoint(api.epGetProcessed)
}

func (api API) epGetProcessed(req *http.Request) result.Result {
	user := authUser(req)

	video, res, ok := api.ownedVideo(req, user)
	if !ok {
		return res
	}
	if video.Content == nil {
		return result.Conflict("Processing of the video is not complete", "processed file for video %s requested in status %q", video.ID, video.Status)
	}

	contentType := video.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return result.Bytes(video.Content, contentType, "user '%s' downloaded video %s", user.Username, video.ID)
}

// ownedVideo loads the video named in the request path. Videos of other users
// are reported as not found unless user is an admin. If ok is false, res is the
// result to send instead.
func (api API) ownedVideo(req *http.Request, user dao.User) (video dao.Video, res result.Result, ok bool) {
	id, err := requireIDParam(req)
	if err != nil {
		return video, result.NotFound(err.Error()), false
	}

	video, err = api.Store.Videos().GetByID(req.Context(), id)
	if err != nil {
		return video, storeErr(err, "get video"), false
	}

	if video.UserID != user.ID && user.Role != dao.Admin {
		return video, result.NotFound("user '%s' requested video %s of another user", user.Username, id), false
	}

	return video, result.Result{}, true
}

