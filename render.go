package vadm

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/views"
)

const dateLayout = "2006-01-02 15:04"

var tableOptions = rosed.Options{
	TableHeaders:             true,
	NoTrailingLineSeparators: true,
}

var textOptions = rosed.Options{
	PreserveParagraphs: true,
	IndentStr:          "  ",
}

func table(data [][]string) string {
	return rosed.Edit("").
		InsertTableOpts(0, data, consoleOutputWidth, tableOptions).
		String()
}

func heading(title string) string {
	return title + "\n" + strings.Repeat("-", len([]rune(title))) + "\n"
}

func (eng *Engine) renderHistory() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(heading(eng.lang.T("video_history")))

	if eng.sess == nil {
		sb.WriteString("Not logged in. Type LOGIN to start.\n")
		return sb.String()
	}

	sb.WriteString(eng.renderSidebar())

	if sel, ok := eng.sidebar.Selected(); ok {
		sb.WriteString("\n")
		sb.WriteString(sel.Title + "\n")
		sb.WriteString("  video:  " + sel.VideoURL + "\n")
		sb.WriteString("  report: " + sel.ReportURL + "\n")
		report := rosed.Edit(string(sel.Report)).
			WithOptions(textOptions).
			Indent(1).
			String()
		sb.WriteString(report + "\n")
	}

	if eng.sess.IsAdmin() {
		sb.WriteString("\nType ADMIN for the admin dashboard.\n")
	}
	return sb.String()
}

func (eng *Engine) renderSidebar() string {
	sb := eng.sidebar

	switch {
	case !sb.IsOpen():
		return "(hidden; type SIDEBAR to show it)\n"
	case sb.Loading():
		return eng.lang.T("loading") + "\n"
	case sb.Err() != nil:
		return rosed.Edit("Error: "+sb.Err().Error()).Wrap(consoleOutputWidth).String() + "\n"
	}

	videos := sb.Videos()
	if len(videos) == 0 {
		return eng.lang.T("no_videos_yet") + "\n"
	}

	data := [][]string{{"ID", eng.lang.T("title"), eng.lang.T("upload_date")}}
	for _, v := range videos {
		data = append(data, []string{v.ID, v.Title, v.UploadDate.Local().Format(dateLayout)})
	}
	return table(data) + "\nType OPEN followed by an ID to view a video.\n"
}

func (eng *Engine) renderShell() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(heading(eng.lang.T("admin_dashboard")))
	sb.WriteString(eng.lang.T("admin_subtitle") + "\n\n")

	for i, tab := range []views.Tab{views.TabUsers, views.TabVideos} {
		if i > 0 {
			sb.WriteString("  ")
		}
		label := eng.lang.T(tab.Label())
		if tab == eng.shell.Active() {
			label = "[" + label + "]"
		}
		sb.WriteString(label)
	}
	sb.WriteString("\n\n")

	if ut := eng.shell.Users(); ut != nil {
		sb.WriteString(eng.renderUsers(ut))
	} else if vt := eng.shell.Videos(); vt != nil {
		sb.WriteString(eng.renderVideos(vt))
	}

	sb.WriteString("\n" + eng.lang.T("back_to_dashboard") + ": DASHBOARD\n")
	return sb.String()
}

func (eng *Engine) renderUsers(ut *views.UserTable) string {
	if ut.Loading() {
		return eng.lang.T("loading") + "\n"
	}

	var sb strings.Builder
	rows := ut.Rows()
	if len(rows) == 0 {
		sb.WriteString(eng.lang.T("no_users") + "\n")
	} else {
		data := [][]string{{"ID", eng.lang.T("username"), eng.lang.T("email"), eng.lang.T("role"), eng.lang.T("actions")}}
		editID, draft, editing := ut.Editing()
		for _, u := range rows {
			action := "EDIT, DELETE"
			if editing && u.ID == editID {
				u = draft
				action = eng.lang.T("editing") + ": SAVE, CANCEL"
			}
			data = append(data, []string{u.ID, u.Username, u.Email, eng.roleBadge(u.Role), action})
		}
		sb.WriteString(table(data) + "\n")
	}

	if ut.AddFormOpen() {
		d := ut.Draft()
		sb.WriteString("\n" + eng.lang.T("add_user") + "\n")
		sb.WriteString(fmt.Sprintf("  %s: %s\n", eng.lang.T("username"), d.Username))
		sb.WriteString(fmt.Sprintf("  %s: %s\n", eng.lang.T("email"), d.Email))
		sb.WriteString(fmt.Sprintf("  %s: %s\n", eng.lang.T("password"), strings.Repeat("*", len([]rune(d.Password)))))
		sb.WriteString(fmt.Sprintf("  %s: %s\n", eng.lang.T("role"), eng.roleBadge(d.Role)))
	}
	return sb.String()
}

func (eng *Engine) roleBadge(r model.Role) string {
	return "<" + eng.lang.T(r.String()) + ">"
}

func (eng *Engine) renderVideos(vt *views.VideoTable) string {
	if vt.Loading() {
		return eng.lang.T("loading") + "\n"
	}

	rows := vt.Rows()
	if len(rows) == 0 {
		return eng.lang.T("no_videos") + "\n"
	}

	data := [][]string{{
		"ID",
		eng.lang.T("title"),
		eng.lang.T("duration"),
		eng.lang.T("status"),
		eng.lang.T("upload_date"),
		eng.lang.T("size"),
		eng.lang.T("actions"),
	}}
	for _, v := range rows {
		action := eng.lang.T("processing_not_complete")
		if v.ReportReady() {
			action = "REPORT: " + eng.lang.T("download_report")
		}
		data = append(data, []string{
			v.ID,
			v.Title,
			views.FormatDuration(v.Duration),
			eng.statusLabel(v.Status),
			v.UploadDate.Local().Format(dateLayout),
			views.FormatSize(v.FileSize),
			action,
		})
	}
	return table(data) + "\n"
}

// statusLabel marks a status by name: completed and error are set apart from
// every other status.
func (eng *Engine) statusLabel(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return "+ " + eng.lang.T(s.String())
	case model.StatusError:
		return "! " + eng.lang.T(s.String())
	case model.StatusPending:
		return "~ " + eng.lang.T(s.String())
	default:
		return "~ " + s.String()
	}
}
