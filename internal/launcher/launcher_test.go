package launcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/paklaunch/paklaunch/internal/config"
	"github.com/paklaunch/paklaunch/internal/engine"
	"github.com/paklaunch/paklaunch/internal/gatekeeper"
	"github.com/paklaunch/paklaunch/internal/prompt"
	"github.com/paklaunch/paklaunch/internal/registry"
	"github.com/paklaunch/paklaunch/internal/watch"
)

type deployCall struct {
	Name      string
	Overwrite bool
}

type fakeDeployer struct {
	mu    sync.Mutex
	calls []deployCall
}

func (f *fakeDeployer) Deploy(name string, overwrite bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, deployCall{name, overwrite})
}

func (f *fakeDeployer) Path(name string) string {
	return filepath.Join("/ext", name)
}

func (f *fakeDeployer) Calls() []deployCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]deployCall(nil), f.calls...)
}

type fakeChecker struct {
	decision gatekeeper.Decision
}

func (f fakeChecker) CheckCompanion(string, int) gatekeeper.Decision {
	return f.decision
}

type fakeRegistry struct {
	desc registry.Descriptor
	err  error
}

func (f fakeRegistry) Lookup(string) (registry.Descriptor, error) {
	return f.desc, f.err
}

type fakeFetcher struct {
	url, dir string
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	f.url, f.dir = rawURL, dir
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(dir, "engine.apk"), nil
}

type fakeStarter struct {
	started bool
	exe     string
	intent  engine.Intent
	err     error
}

func (f *fakeStarter) Start(ctx context.Context, exe string, intent engine.Intent) (*engine.Process, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = true
	f.exe = exe
	f.intent = intent
	return &engine.Process{}, nil
}

type recordingPresenter struct {
	answer  prompt.Presenter
	title   string
	options []string
}

func (r *recordingPresenter) PresentChoice(ctx context.Context, title, message string, options []prompt.Option) (prompt.Option, error) {
	r.title = title
	for _, o := range options {
		r.options = append(r.options, o.Key)
	}
	return r.answer.PresentChoice(ctx, title, message, options)
}

var installedDesc = registry.Descriptor{
	Name:        config.DefaultPackage,
	Installed:   true,
	VersionCode: 1709,
	Dir:         "/pkgs/su.xash.engine",
	Entry:       "bin/engine",
}

type fixture struct {
	deployer  *fakeDeployer
	fetcher   *fakeFetcher
	starter   *fakeStarter
	presenter *recordingPresenter
	launcher  *Launcher
}

func newFixture(t *testing.T, checker Checker, answer prompt.Presenter) *fixture {
	t.Helper()
	f := &fixture{
		deployer:  &fakeDeployer{},
		fetcher:   &fakeFetcher{},
		starter:   &fakeStarter{},
		presenter: &recordingPresenter{answer: answer},
	}
	l, err := New(Config{
		Profile:      config.Default(),
		Deployer:     f.deployer,
		Checker:      checker,
		Registry:     fakeRegistry{desc: installedDesc},
		Presenter:    f.presenter,
		Fetcher:      f.fetcher,
		Starter:      f.starter,
		DownloadDir:  "/downloads",
		NativeLibDir: "/native",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.launcher = l
	return f
}

func decision(kind gatekeeper.Kind) gatekeeper.Decision {
	d := gatekeeper.Decision{Kind: kind}
	if kind != gatekeeper.OK {
		d.DownloadURL = config.DefaultWideURL
	}
	if kind == gatekeeper.PromptUpdate {
		d.Installed = installedDesc
	}
	return d
}

func TestRun_Flows(t *testing.T) {
	tests := []struct {
		name        string
		kind        gatekeeper.Kind
		answer      prompt.Presenter
		want        Outcome
		wantOptions []string
		wantFetch   bool
	}{
		{
			name: "ok launches without asking",
			kind: gatekeeper.OK,
			want: Launched,
		},
		{
			name:        "install then download",
			kind:        gatekeeper.PromptInstall,
			answer:      prompt.Fixed{Key: OptionDownload},
			want:        Downloaded,
			wantOptions: []string{OptionDownload, OptionExit},
			wantFetch:   true,
		},
		{
			name:        "install then exit",
			kind:        gatekeeper.PromptInstall,
			answer:      prompt.Fixed{Key: OptionExit},
			want:        Exited,
			wantOptions: []string{OptionDownload, OptionExit},
		},
		{
			name:        "update then continue",
			kind:        gatekeeper.PromptUpdate,
			answer:      prompt.Fixed{Key: OptionContinue},
			want:        Launched,
			wantOptions: []string{OptionDownload, OptionContinue, OptionExit},
		},
		{
			name:        "update then download",
			kind:        gatekeeper.PromptUpdate,
			answer:      prompt.Fixed{},
			want:        Downloaded,
			wantOptions: []string{OptionDownload, OptionContinue, OptionExit},
			wantFetch:   true,
		},
		{
			name:        "dismissed",
			kind:        gatekeeper.PromptUpdate,
			answer:      prompt.Fixed{Err: prompt.ErrDismissed},
			want:        Exited,
			wantOptions: []string{OptionDownload, OptionContinue, OptionExit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := tt.answer
			if answer == nil {
				answer = prompt.Fixed{Err: errors.New("must not be asked")}
			}
			f := newFixture(t, fakeChecker{decision(tt.kind)}, answer)

			res, err := f.launcher.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.Outcome != tt.want {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.want)
			}
			if diff := cmp.Diff(tt.wantOptions, f.presenter.options); diff != "" {
				t.Errorf("options (-want +got):\n%s", diff)
			}
			if f.starter.started != (tt.want == Launched) {
				t.Errorf("started = %v", f.starter.started)
			}
			if tt.wantFetch {
				if f.fetcher.url != config.DefaultWideURL || f.fetcher.dir != "/downloads" {
					t.Errorf("fetched %q into %q", f.fetcher.url, f.fetcher.dir)
				}
				if res.DownloadPath == "" {
					t.Error("DownloadPath not set")
				}
			} else if f.fetcher.url != "" {
				t.Errorf("unexpected fetch of %q", f.fetcher.url)
			}

			want := []deployCall{{config.DefaultArchive, false}}
			if diff := cmp.Diff(want, f.deployer.Calls()); diff != "" {
				t.Errorf("deploy calls (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_CheckDisabled(t *testing.T) {
	f := newFixture(t, nil, prompt.Fixed{Err: errors.New("must not be asked")})

	res, err := f.launcher.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Launched || res.Decision.Kind != gatekeeper.OK {
		t.Errorf("Run() = %v/%v, want launched/ok", res.Outcome, res.Decision.Kind)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		f := newFixture(t, fakeChecker{decision(gatekeeper.PromptInstall)}, prompt.Fixed{})
		f.fetcher.err = errors.New("offline")
		if _, err := f.launcher.Run(context.Background()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("presenter failure", func(t *testing.T) {
		f := newFixture(t, fakeChecker{decision(gatekeeper.PromptInstall)}, prompt.Fixed{Err: errors.New("no tty")})
		if _, err := f.launcher.Run(context.Background()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		f := newFixture(t, fakeChecker{decision(gatekeeper.OK)}, prompt.Fixed{})
		f.starter.err = errors.New("exec format error")
		if _, err := f.launcher.Run(context.Background()); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLaunch_Intent(t *testing.T) {
	f := newFixture(t, nil, prompt.Fixed{})

	if _, err := f.launcher.Launch(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.starter.exe != installedDesc.Executable() {
		t.Errorf("exe = %q, want %q", f.starter.exe, installedDesc.Executable())
	}
	want := engine.Intent{
		PakFile:    filepath.Join("/ext", config.DefaultArchive),
		GameDir:    config.DefaultGameDir,
		Argv:       config.DefaultArgs,
		GameLibDir: "/native",
	}
	if diff := cmp.Diff(want, f.starter.intent); diff != "" {
		t.Errorf("intent (-want +got):\n%s", diff)
	}
}

func TestLaunch_NotInstalled(t *testing.T) {
	l, err := New(Config{
		Profile:  config.Default(),
		Deployer: &fakeDeployer{},
		Registry: fakeRegistry{err: registry.ErrNotFound},
		Starter:  &fakeStarter{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Launch(context.Background()); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHandleSignals(t *testing.T) {
	f := newFixture(t, nil, prompt.Fixed{})
	events := make(chan watch.Event)
	done := make(chan struct{})

	go func() {
		f.launcher.HandleSignals(context.Background(), events)
		close(done)
	}()

	events <- watch.Event{Package: config.DefaultPackage}
	events <- watch.Event{Package: config.DefaultPackage}
	close(events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("HandleSignals did not return after channel close")
	}

	want := []deployCall{{config.DefaultArchive, true}, {config.DefaultArchive, true}}
	if diff := cmp.Diff(want, f.deployer.Calls()); diff != "" {
		t.Errorf("deploy calls (-want +got):\n%s", diff)
	}
}

func TestHandleSignals_ContextCancel(t *testing.T) {
	f := newFixture(t, nil, prompt.Fixed{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.launcher.HandleSignals(ctx, make(chan watch.Event))

	if n := len(f.deployer.Calls()); n != 0 {
		t.Errorf("deploy calls = %d, want 0", n)
	}
}

func TestNew_Validation(t *testing.T) {
	base := Config{
		Profile:  config.Default(),
		Deployer: &fakeDeployer{},
		Registry: fakeRegistry{},
		Starter:  &fakeStarter{},
	}

	if _, err := New(base); err != nil {
		t.Errorf("minimal config: %v", err)
	}

	noProfile := base
	noProfile.Profile = nil
	if _, err := New(noProfile); err == nil {
		t.Error("missing profile accepted")
	}

	checkerOnly := base
	checkerOnly.Checker = fakeChecker{}
	if _, err := New(checkerOnly); err == nil {
		t.Error("checker without presenter accepted")
	}
}

func TestChoices(t *testing.T) {
	c := config.Default().Companion

	title, msg, opts := Choices(c, decision(gatekeeper.PromptUpdate))
	if title == "" || msg == "" || len(opts) != 3 {
		t.Errorf("update choices = %q %q %d", title, msg, len(opts))
	}

	_, _, opts = Choices(c, decision(gatekeeper.OK))
	if len(opts) != 0 {
		t.Errorf("OK decision produced %d options", len(opts))
	}
}

func TestOutcome_String(t *testing.T) {
	for o, want := range map[Outcome]string{Launched: "launched", Downloaded: "downloaded", Exited: "exited", Outcome(9): "Outcome(9)"} {
		if got := o.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
