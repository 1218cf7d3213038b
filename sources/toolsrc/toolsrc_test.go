package toolsrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/storage"
	"github.com/teranos/footprint/tools"
)

// fakeRunner records the command and optionally writes the scanner output
type fakeRunner struct {
	commands []tools.Command
	write    func(cmd tools.Command)
	result   tools.Result
}

func (f *fakeRunner) Run(_ context.Context, cmd tools.Command) tools.Result {
	f.commands = append(f.commands, cmd)
	if f.write != nil {
		f.write(cmd)
	}
	res := f.result
	res.Command = cmd.Args
	return res
}

// writeTo simulates a scanner that leaves content at path
func writeTo(t *testing.T, path string, content string) func(tools.Command) {
	return func(tools.Command) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func execRequest(t *testing.T, username string, runner tools.Runner) (sources.ExecRequest, storage.RunPaths) {
	t.Helper()
	dir := t.TempDir()
	paths := storage.RunPaths{RunDir: dir, RawDir: filepath.Join(dir, storage.RawDirName)}
	cfg := am.Default()
	cfg.Tools.SherlockPath = filepath.Join(dir, "third_party", "sherlock")
	cfg.Tools.MaigretPath = filepath.Join(dir, "third_party", "maigret")
	cfg.Tools.Env = map[string]string{"https_proxy": "http://proxy:3128"}
	return sources.ExecRequest{
		Inputs: schema.LookupInputs{Username: username},
		Paths:  paths,
		Config: cfg,
		Runner: runner,
	}, paths
}

func toolDir(paths storage.RunPaths, id string) string {
	return filepath.Join(paths.RawDir, storage.ToolsDirName, id)
}

func TestBuildRequests(t *testing.T) {
	for _, src := range []sources.Source{NewSherlock(), NewMaigret(), NewWhatsMyName()} {
		t.Run(src.ID(), func(t *testing.T) {
			assert.Equal(t, sources.CategoryTools, src.Category())
			assert.Equal(t, []schema.InputType{schema.InputUsername}, src.SupportedInputs())

			reqs, err := src.BuildRequests(schema.LookupInputs{Username: "alice"})
			require.NoError(t, err)
			require.Len(t, reqs, 1)
			assert.Equal(t, "tool://"+src.ID()+"/alice", reqs[0].URL)
			assert.Equal(t, sources.TransportTool, reqs[0].Transport)
			assert.Equal(t, schema.InputUsername, reqs[0].InputType)

			reqs, err = src.BuildRequests(schema.LookupInputs{Email: "a@example.com"})
			require.NoError(t, err)
			assert.Empty(t, reqs)

			_, ok := sources.CanExecute(src)
			assert.True(t, ok)
		})
	}
}

func TestSherlock_Execute(t *testing.T) {
	runner := &fakeRunner{}
	req, paths := execRequest(t, "alice", runner)
	out := filepath.Join(toolDir(paths, "sherlock"), "alice.csv")
	runner.write = writeTo(t, out, "username,name,url_main,url_user,exists,http_status,response_time_s\n"+
		"alice,GitHub,https://github.com/,https://github.com/alice,Claimed,200,0.31\n"+
		"alice,GitLab,https://gitlab.com/,https://gitlab.com/alice,Available,404,0.2\n"+
		"alice,Keybase,https://keybase.io/,,true,200,0.1\n"+
		"alice,Nowhere,,,true,200,0.1\n")

	src, _ := sources.CanExecute(NewSherlock())
	findings, err := src.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, findings, 1, "rows that are unclaimed or carry no user url are skipped")

	f := findings[0]
	assert.Equal(t, "sherlock:alice:GitHub", f.Entity.EntityID)
	assert.Equal(t, []string{"https://github.com/alice"}, f.Entity.ProfileURLs)
	require.NotNil(t, f.Entity.DisplayName)
	assert.Equal(t, "alice", *f.Entity.DisplayName)
	require.Len(t, f.Entity.Evidence, 1)
	ev := f.Entity.Evidence[0]
	assert.Equal(t, "sherlock.csv", ev.ParserID)
	assert.Equal(t, out, ev.RawPath)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, storage.ContentHash(content), ev.RawHash)

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, []string{"python3", "-m", "sherlock_project", "--csv", "--folderoutput", toolDir(paths, "sherlock"),
		"--no-color", "--local", "--timeout", "120", "alice"}, cmd.Args)
	assert.Equal(t, req.Config.Tools.SherlockPath, cmd.Dir)
	assert.Equal(t, req.Config.Tools.SherlockPath, cmd.Env["PYTHONPATH"])
	assert.Equal(t, "http://proxy:3128", cmd.Env["https_proxy"])
	assert.Equal(t, req.Config.Tools.Timeout(), cmd.Timeout)
}

func TestSherlock_KeybaseFallsBackToURLColumn(t *testing.T) {
	content := "name,url,exists\nKeybase,https://keybase.io/alice,yes\n"
	findings, err := ParseSherlockCSV("sherlock", "alice", "/tmp/alice.csv", []byte(content))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"https://keybase.io/alice"}, findings[0].Entity.ProfileURLs)
}

func TestSherlock_EmptyCSV(t *testing.T) {
	findings, err := ParseSherlockCSV("sherlock", "alice", "/tmp/alice.csv", nil)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestSherlock_SplitsPythonExecutable(t *testing.T) {
	runner := &fakeRunner{}
	req, _ := execRequest(t, "alice", runner)
	req.Config.Tools.PythonExecutable = "uv run python"

	src, _ := sources.CanExecute(NewSherlock())
	_, err := src.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{"uv", "run", "python", "-m", "sherlock_project"}, runner.commands[0].Args[:5])
}

func TestMaigret_Execute(t *testing.T) {
	runner := &fakeRunner{}
	req, paths := execRequest(t, "alice", runner)
	out := filepath.Join(toolDir(paths, "maigret"), "report_alice_simple.json")
	runner.write = writeTo(t, out, `{
		"Reddit": {"status": {"url": "https://www.reddit.com/user/alice", "status": "Claimed"}},
		"GitHub": {"status": {"url": "https://github.com/alice"}},
		"Twitch": {"status": {"url": "https://twitch.tv/alice", "status": "Available"}},
		"Broken": {"status": null},
		"NoURL": {"status": {"status": "Claimed"}}
	}`)

	src, _ := sources.CanExecute(NewMaigret())
	findings, err := src.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "maigret:alice:GitHub", findings[0].Entity.EntityID, "sites are emitted in name order")
	assert.Equal(t, "maigret:alice:Reddit", findings[1].Entity.EntityID)
	assert.Equal(t, "maigret.json", findings[0].Entity.Evidence[0].ParserID)
	require.NotNil(t, findings[1].Entity.Evidence[0].MatchExcerpt)
	assert.Equal(t, "Reddit", *findings[1].Entity.Evidence[0].MatchExcerpt)

	cmd := runner.commands[0]
	assert.Equal(t, []string{"python3", "-m", "maigret", "alice", "--json", "simple", "--folderoutput", toolDir(paths, "maigret")}, cmd.Args)
	assert.Equal(t, req.Config.Tools.MaigretPath, cmd.Env["PYTHONPATH"])
}

func TestMaigret_MalformedReport(t *testing.T) {
	_, err := ParseMaigretJSON("maigret", "alice", "/tmp/r.json", []byte("{not json"))
	assert.Error(t, err)
}

func TestWhatsMyName_Execute(t *testing.T) {
	prev := executable
	executable = func() (string, error) { return "/usr/local/bin/footprint", nil }
	t.Cleanup(func() { executable = prev })

	runner := &fakeRunner{}
	req, paths := execRequest(t, "alice", runner)
	req.Config.Tools.WhatsMyNamePath = "/opt/WhatsMyName"
	out := filepath.Join(toolDir(paths, "whatsmyname"), "report_alice.json")
	runner.write = writeTo(t, out, `{"username":"alice","results":[
		{"site_name":"Codeberg","url":"https://codeberg.org/alice","matched":true,"status_code":200},
		{"site_name":"Quiet","url":"https://quiet.example/alice","matched":false,"status_code":404},
		{"site_name":"NoURL","url":"","matched":true,"status_code":200}
	]}`)

	src, _ := sources.CanExecute(NewWhatsMyName())
	findings, err := src.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "whatsmyname:alice:Codeberg", findings[0].Entity.EntityID)
	assert.Equal(t, schema.FindingProfile, findings[0].Type)

	cmd := runner.commands[0]
	assert.Equal(t, []string{
		"/usr/local/bin/footprint", "tools", "whatsmyname",
		"--data", "/opt/WhatsMyName/wmn-data.json",
		"--username", "alice",
		"--output", out,
		"--timeout", "15",
	}, cmd.Args)
}

func TestWhatsMyNameData(t *testing.T) {
	cfg := am.Default()
	cfg.Tools.WhatsMyNamePath = "third_party/WhatsMyName"
	assert.Equal(t, filepath.Join("third_party/WhatsMyName", "wmn-data.json"), WhatsMyNameData(cfg))

	cfg.Tools.WhatsMyNameData = "git::https://github.com/WebBreacher/WhatsMyName.git"
	assert.Equal(t, cfg.Tools.WhatsMyNameData, WhatsMyNameData(cfg))
}

func TestExecute_MissingOutputYieldsNoFindings(t *testing.T) {
	runner := &fakeRunner{result: tools.Result{ExitCode: -1, Error: `exec: "python3": executable file not found in $PATH`}}
	req, _ := execRequest(t, "alice", runner)

	for _, src := range []sources.Source{NewSherlock(), NewMaigret()} {
		exec, _ := sources.CanExecute(src)
		findings, err := exec.Execute(context.Background(), req)
		require.NoError(t, err, src.ID())
		assert.Empty(t, findings, src.ID())
	}
}

func TestExecute_NoUsernameSkipsRunner(t *testing.T) {
	runner := &fakeRunner{}
	req, _ := execRequest(t, "", runner)

	src, _ := sources.CanExecute(NewSherlock())
	findings, err := src.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Empty(t, runner.commands)
}

func TestExecute_NoRunnerIsContractViolation(t *testing.T) {
	req, _ := execRequest(t, "alice", nil)
	req.Runner = nil

	src, _ := sources.CanExecute(NewMaigret())
	_, err := src.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))
}

func TestExecute_Cancelled(t *testing.T) {
	runner := &fakeRunner{result: tools.Result{ExitCode: -1, Error: "context canceled"}}
	req, _ := execRequest(t, "alice", runner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, _ := sources.CanExecute(NewSherlock())
	_, err := src.Execute(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
