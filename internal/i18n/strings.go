package i18n

type translation struct {
	en string
	ru string
}

// Message keys used outside of plain labels.
const (
	UsersFetchFailed     = "users_fetch_failed"
	UserUpdated          = "user_updated"
	UserUpdateFailed     = "user_update_failed"
	ConfirmDeleteUser    = "confirm_delete_user"
	UserDeleted          = "user_deleted"
	UserDeleteFailed     = "user_delete_failed"
	UserAdded            = "user_added"
	UserAddFailed        = "user_add_failed"
	Untitled             = "untitled"
	VideosFetchFailed    = "videos_fetch_failed"
	DeleteConfirmation   = "delete_confirmation"
	VideoDeleted         = "video_deleted"
	VideoDeleteFailed    = "video_delete_failed"
	ReportDownloaded     = "report_downloaded"
	ReportDownloadFailed = "report_download_failed"
	ProcessingNotDone    = "processing_not_complete"
	VideoLoaded          = "video_loaded"
	VideoLoadFailed      = "video_load_failed"
	HistoryFetchFailed   = "history_fetch_failed"
	HistoryUpdated       = "history_updated"
	HistoryUpdateFailed  = "history_update_failed"
	LanguageSwitched     = "language_switched"
)

var translations = map[string]translation{
	UsersFetchFailed:     {"Failed to load users", "Не удалось загрузить пользователей"},
	UserUpdated:          {"User updated", "Пользователь обновлён"},
	UserUpdateFailed:     {"Failed to update user", "Не удалось обновить пользователя"},
	ConfirmDeleteUser:    {"Are you sure you want to delete this user?", "Вы уверены, что хотите удалить этого пользователя?"},
	UserDeleted:          {"User deleted", "Пользователь удалён"},
	UserDeleteFailed:     {"Failed to delete user", "Не удалось удалить пользователя"},
	UserAdded:            {"User added", "Пользователь добавлен"},
	UserAddFailed:        {"Failed to add user", "Не удалось добавить пользователя"},
	Untitled:             {"Untitled", "Без названия"},
	VideosFetchFailed:    {"Failed to load videos", "Не удалось загрузить видео"},
	DeleteConfirmation:   {"Are you sure you want to delete this video?", "Вы уверены, что хотите удалить это видео?"},
	VideoDeleted:         {"Video deleted", "Видео удалено"},
	VideoDeleteFailed:    {"Failed to delete video", "Не удалось удалить видео"},
	ReportDownloaded:     {"Report saved to %s", "Отчёт сохранён в %s"},
	ReportDownloadFailed: {"Failed to download report", "Не удалось скачать отчёт"},
	ProcessingNotDone:    {"Processing is not complete", "Обработка не завершена"},
	VideoLoaded:          {"Video loaded successfully", "Видео успешно загружено"},
	VideoLoadFailed:      {"Failed to load video", "Не удалось загрузить видео"},
	HistoryFetchFailed:   {"Failed to load history", "Не удалось загрузить историю"},
	HistoryUpdated:       {"History updated successfully", "История успешно обновлена"},
	HistoryUpdateFailed:  {"Failed to update history", "Не удалось обновить историю"},
	LanguageSwitched:     {"Language switched to English", "Язык переключён на русский"},

	"admin_dashboard":   {"Admin Dashboard", "Панель администратора"},
	"admin_subtitle":    {"Manage users, videos, and system logs", "Управление пользователями, видео и журналами"},
	"back_to_dashboard": {"Back to Dashboard", "Назад к панели"},
	"users_tab":         {"Users", "Пользователи"},
	"videos_tab":        {"Videos", "Видео"},
	"loading":           {"Loading...", "Загрузка..."},
	"load_users":        {"Load users", "Загрузить пользователей"},
	"load_videos":       {"Load videos", "Загрузить видео"},
	"add_user":          {"Add user", "Добавить пользователя"},
	"username":          {"Username", "Имя пользователя"},
	"email":             {"Email", "Эл. почта"},
	"password":          {"Password", "Пароль"},
	"role":              {"Role", "Роль"},
	"actions":           {"Actions", "Действия"},
	"editing":           {"editing", "редактируется"},
	"user":              {"user", "пользователь"},
	"admin":             {"admin", "администратор"},
	"title":             {"Title", "Название"},
	"duration":          {"Duration", "Длительность"},
	"status":            {"Status", "Статус"},
	"upload_date":       {"Upload date", "Дата загрузки"},
	"size":              {"Size", "Размер"},
	"pending":           {"pending", "в ожидании"},
	"completed":         {"completed", "завершено"},
	"error":             {"error", "ошибка"},
	"download_report":   {"Download report", "Скачать отчёт"},
	"no_videos":         {"No videos found", "Видео не найдены"},
	"no_users":          {"No users found", "Пользователи не найдены"},
	"video_history":     {"Video History", "История видео"},
	"no_videos_yet":     {"No videos yet", "Пока нет видео"},
	"yes_no":            {"[y/N]", "[д/Н]"},
}
