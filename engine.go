// Package vadm contains a CLI-driven console for administering a video
// processing backend. It reads commands continuously and applies them to the
// history and admin views until the user quits.
package vadm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/vadm/internal/blob"
	"github.com/dekarrin/vadm/internal/client"
	"github.com/dekarrin/vadm/internal/cmderr"
	"github.com/dekarrin/vadm/internal/command"
	"github.com/dekarrin/vadm/internal/config"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/input"
	"github.com/dekarrin/vadm/internal/notify"
	"github.com/dekarrin/vadm/internal/prefs"
	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dekarrin/vadm/internal/session"
	"github.com/dekarrin/vadm/internal/views"
	"github.com/rs/zerolog"
)

const consoleOutputWidth = 80

// lineReader is a command.Reader that can also read free-form answers and
// passwords.
type lineReader interface {
	command.Reader
	AllowBlank(allow bool)
	ReadPassword(out io.Writer, prompt string) (string, error)
}

// Options are the settings of an Engine that do not come from the config
// file.
type Options struct {
	// ForceDirect reads input directly even when attached to a terminal.
	ForceDirect bool

	// LoginAs is a username to log in as as soon as the engine starts. If
	// empty, a saved token is used if there is one.
	LoginAs string

	// Log receives the engine's log entries. If nil, nothing is logged.
	Log *zerolog.Logger

	// HTTPClient is used for calls to the backend. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Store holds the token and language between runs. If nil, the state
	// file from the config is opened.
	Store prefs.Store
}

// Engine contains the things needed to run a console session from an
// interactive shell attached to an input stream and an output stream.
type Engine struct {
	log   zerolog.Logger
	api   *client.Client
	store prefs.Store
	lang  *i18n.Live
	files *blob.Registry
	saver blob.Saver
	deps  views.Deps

	in          lineReader
	out         *bufio.Writer
	useReadline bool
	forceDirect bool
	running     bool
	loginAs     string

	sess    *session.Session
	sidebar *views.HistorySidebar
	shell   *views.AdminShell
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. Unset values in cfg are given their defaults.
func New(inputStream io.Reader, outputStream io.Writer, cfg config.Config, opts Options) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	store := opts.Store
	if store == nil {
		fst, err := prefs.OpenFileStore(cfg.StateFile)
		if err != nil {
			return nil, err
		}
		store = fst
	}

	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}

	eng := &Engine{
		log:         log,
		store:       store,
		lang:        i18n.NewLive(startLocale(store, cfg.Language, log)),
		files:       blob.NewRegistry(""),
		saver:       blob.Dir(cfg.DownloadDir),
		out:         bufio.NewWriter(outputStream),
		forceDirect: opts.ForceDirect,
		loginAs:     opts.LoginAs,
	}

	clientOpts := []client.Option{client.WithLogger(log)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(opts.HTTPClient))
	}
	eng.api = client.New(cfg.APIURL, clientOpts...)

	eng.useReadline = !opts.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout
	if eng.useReadline {
		var err error
		eng.in, err = input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	eng.deps = views.Deps{
		Notify:  notify.NotifierFunc(eng.notify),
		Confirm: notify.ConfirmerFunc(eng.confirm),
		Texts:   eng.lang,
		Log:     &eng.log,
	}
	eng.sidebar = eng.newSidebar()

	// a saved session is resumed unless it has run out or someone else was
	// asked for
	if tok, ok := store.Get(prefs.TokenKey); ok && tok != "" && opts.LoginAs == "" {
		sess, err := session.FromToken(tok)
		if err != nil || sess.Expired(time.Now()) {
			log.Info().Err(err).Msg("discarding saved token")
			if err := store.Delete(prefs.TokenKey); err != nil {
				log.Warn().Err(err).Msg("could not remove saved token")
			}
		} else {
			eng.api.SetToken(tok)
			eng.sess = &sess
		}
	}

	return eng, nil
}

func startLocale(store prefs.Store, fallback string, log zerolog.Logger) i18n.Locale {
	choice, ok := store.Get(prefs.LocaleKey)
	if !ok || choice == "" {
		choice = fallback
	}
	loc, err := i18n.ParseLocale(choice)
	if err != nil {
		log.Warn().Err(err).Msg("using default language")
		return i18n.Default
	}
	return loc
}

func (eng *Engine) newSidebar() *views.HistorySidebar {
	return views.NewHistorySidebar(eng.api, eng.files, eng.store, eng.deps)
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode and local copies
// of downloaded videos.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running console engine")
	}

	if err := eng.sidebar.Close(); err != nil {
		eng.log.Warn().Err(err).Msg("could not release selection")
	}
	if err := eng.files.ReleaseAll(); err != nil {
		eng.log.Warn().Err(err).Msg("could not release local files")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and applying them to
// the views until the QUIT command is received or input ends.
func (eng *Engine) RunUntilQuit(ctx context.Context) error {
	introMsg := "Welcome to the VidAdmin console\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "===============================\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	if eng.loginAs != "" {
		if err := eng.login(ctx, eng.loginAs); err != nil {
			if err := eng.writeErr(err); err != nil {
				return err
			}
		}
	} else if eng.sess != nil {
		if err := eng.enterHistory(ctx); err != nil {
			return err
		}
	} else {
		if err := eng.writeLine("Type LOGIN to start, or HELP for the list of commands."); err != nil {
			return err
		}
	}

	for eng.running {
		cmd, err := command.Get(eng.in, eng.out, eng.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		if cmd.Verb == command.Quit {
			eng.running = false
			break
		}

		if err := eng.execute(ctx, cmd); err != nil {
			if err := eng.writeErr(err); err != nil {
				return err
			}
		}
	}

	if err := eng.sidebar.Close(); err != nil {
		eng.log.Warn().Err(err).Msg("could not release selection")
	}

	return eng.write("Goodbye\n")
}

// prompt shows where in the console the user is.
func (eng *Engine) prompt() error {
	p := "vadm"
	if eng.sess != nil {
		p += ":" + eng.sess.Username
	}
	if eng.shell != nil {
		p += "/" + eng.shell.Active().String()
	}
	p += input.DefaultPrompt

	if eng.useReadline {
		eng.in.(*input.InteractiveReader).SetPrompt(p)
		return nil
	}
	return eng.write(p)
}

// ask reads one line of free-form input after showing prompt. Blank answers
// are allowed.
func (eng *Engine) ask(prompt string) (string, error) {
	var oldPrompt string
	var icr *input.InteractiveReader
	if eng.useReadline {
		icr = eng.in.(*input.InteractiveReader)
		oldPrompt = icr.GetPrompt()
		icr.SetPrompt(prompt)
	} else if prompt != "" {
		if err := eng.write(prompt); err != nil {
			return "", err
		}
	}

	eng.in.AllowBlank(true)
	answer, err := eng.in.ReadCommand()
	eng.in.AllowBlank(false)

	if icr != nil {
		icr.SetPrompt(oldPrompt)
	}
	return answer, err
}

func (eng *Engine) confirm(prompt string) bool {
	answer, err := eng.ask(prompt + " " + eng.lang.T("yes_no") + " ")
	if err != nil {
		eng.log.Warn().Err(err).Msg("could not read confirmation")
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "д")
}

func (eng *Engine) notify(n notify.Notification) {
	var prefix string
	switch n.Level {
	case notify.Success:
		prefix = "[+] "
	case notify.Error:
		prefix = "[!] "
	default:
		prefix = "[i] "
	}

	if err := eng.writeLine(prefix + n.Message); err != nil {
		eng.log.Error().Err(err).Str("notification", n.String()).Msg("could not show notification")
	}
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

func (eng *Engine) writeLine(s string) error {
	return eng.write(rosed.Edit(s).Wrap(consoleOutputWidth).String() + "\n")
}

func (eng *Engine) writeErr(err error) error {
	eng.log.Debug().Err(err).Msg("command rejected")
	return eng.writeLine(cmderr.ConsoleMessage(err))
}

// flushWriter writes through to the output immediately, for prompts written
// by a reader.
type flushWriter struct {
	w *bufio.Writer
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, fw.w.Flush()
}

// login asks for the password of username and logs in with it. An empty
// username is asked for too.
func (eng *Engine) login(ctx context.Context, username string) error {
	if username == "" {
		var err error
		username, err = eng.ask(eng.lang.T("username") + ": ")
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(username)
		if username == "" {
			return cmderr.Interpreterf("No username given; nobody was logged in")
		}
	}

	password, err := eng.in.ReadPassword(flushWriter{eng.out}, eng.lang.T("password")+": ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	resp, err := eng.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, serr.ErrUnauthorized) || errors.Is(err, serr.ErrBadCredentials) {
			return cmderr.WrapInterpreter(err, "Incorrect username or password", "")
		}
		return cmderr.WrapInterpreter(err, fmt.Sprintf("Could not log in: %v", err), "")
	}

	sess, err := session.FromToken(resp.Token)
	if err != nil {
		return cmderr.WrapInterpreter(err, "The server gave back a token that could not be read", "")
	}

	eng.leaveSession()
	if err := eng.store.Set(prefs.TokenKey, resp.Token); err != nil {
		eng.log.Warn().Err(err).Msg("could not save token")
	}
	eng.api.SetToken(resp.Token)
	eng.sess = &sess
	eng.log.Info().Str("user", sess.Username).Str("role", sess.Role.String()).Msg("logged in")

	if err := eng.writeLine(fmt.Sprintf("Logged in as %s (%s)", sess.Username, eng.lang.T(sess.Role.String()))); err != nil {
		return err
	}
	return eng.enterHistory(ctx)
}

// leaveSession drops everything tied to the current user.
func (eng *Engine) leaveSession() {
	eng.shell = nil
	if err := eng.sidebar.Close(); err != nil {
		eng.log.Warn().Err(err).Msg("could not release selection")
	}
	eng.sidebar = eng.newSidebar()
	eng.sess = nil
	eng.api.SetToken("")
}

// enterHistory shows the history view, loading the sidebar.
func (eng *Engine) enterHistory(ctx context.Context) error {
	eng.shell = nil
	eng.sidebar.Open()
	// a failed load has been notified and is shown in the view
	_ = eng.sidebar.Load(ctx)
	return eng.show()
}

func (eng *Engine) show() error {
	if eng.shell != nil {
		return eng.write(eng.renderShell())
	}
	return eng.write(eng.renderHistory())
}
