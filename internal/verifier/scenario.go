// Package verifier runs the ordered account/player scenario against a qfight API and
// stops at the first failed assertion.
package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/code-100-precent/LingQfight/pkg/qfight"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step names in execution order
const (
	StepAdminLogin     = "admin_login"
	StepRegisterPlayer = "register_player"
	StepLoginPlayer    = "login_player"
	StepGetPlayerData  = "get_player_data"
	StepUpdatePlayer   = "update_player_data"
	StepResetPlayer    = "reset_player_data"
)

const wrongPassword = "wrong_123456"

// AssertionError reports the step and the expectation that did not hold
type AssertionError struct {
	Step    string
	Message string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("step %s: %s", e.Step, e.Message)
}

type Config struct {
	BaseURL        string
	AdminUsername  string
	AdminPassword  string
	PlayerPassword string
	PlayerName     string
}

type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

type StepResult struct {
	Name     string        `json:"name" yaml:"name"`
	Passed   bool          `json:"passed" yaml:"passed"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

type Report struct {
	RunID          string           `json:"run_id" yaml:"run_id"`
	BaseURL        string           `json:"base_url" yaml:"base_url"`
	PlayerUsername string           `json:"player_username" yaml:"player_username"`
	StartedAt      time.Time        `json:"started_at" yaml:"started_at"`
	Duration       time.Duration    `json:"duration" yaml:"duration"`
	Steps          []StepResult     `json:"steps" yaml:"steps"`
	Context        map[string]int64 `json:"context" yaml:"context"`
	Passed         bool             `json:"passed" yaml:"passed"`
}

// FailedStep returns the first failed step, or nil when every executed step passed
func (r *Report) FailedStep() *StepResult {
	for i := range r.Steps {
		if !r.Steps[i].Passed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Scenario is single use: one Scenario, one Run
type Scenario struct {
	cfg     Config
	client  *qfight.Client
	tc      *Context
	metrics *Metrics
	log     *zap.Logger
	now     func() time.Time

	runID          string
	playerUsername string
	current        string
}

type Option func(*Scenario)

// WithClock fixes the clock used to derive generated usernames
func WithClock(now func() time.Time) Option {
	return func(s *Scenario) { s.now = now }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scenario) { s.metrics = m }
}

func NewScenario(cfg Config, opts ...Option) *Scenario {
	runID := uuid.New().String()
	s := &Scenario{
		cfg:    cfg,
		client: qfight.NewClient(cfg.BaseURL).WithRequestID(runID),
		tc:     NewContext(),
		now:    time.Now,
		runID:  runID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.playerUsername = "player_test_" + s.now().Format("20060102150405")
	s.log = logger.With(zap.String("run_id", s.runID)).Named("verifier")
	return s
}

func (s *Scenario) PlayerUsername() string {
	return s.playerUsername
}

func (s *Scenario) Context() *Context {
	return s.tc
}

func (s *Scenario) Steps() []Step {
	return []Step{
		{Name: StepAdminLogin, Run: s.adminLogin},
		{Name: StepRegisterPlayer, Run: s.registerPlayer},
		{Name: StepLoginPlayer, Run: s.loginPlayer},
		{Name: StepGetPlayerData, Run: s.getPlayerData},
		{Name: StepUpdatePlayer, Run: s.updatePlayerData},
		{Name: StepResetPlayer, Run: s.resetPlayerData},
	}
}

// Run executes the steps in order. The returned error is an *AssertionError for a failed
// expectation, or the transport error that prevented a step from completing.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:          s.runID,
		BaseURL:        s.client.BaseURL(),
		PlayerUsername: s.playerUsername,
		StartedAt:      s.now(),
	}
	start := time.Now()
	s.log.Info("scenario started", zap.String("base_url", report.BaseURL), zap.String("player", s.playerUsername))

	var runErr error
	for _, step := range s.Steps() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		s.current = step.Name
		stepStart := time.Now()
		err := step.Run(ctx)
		elapsed := time.Since(stepStart)

		res := StepResult{Name: step.Name, Passed: err == nil, Duration: elapsed}
		s.metrics.observeStep(step.Name, err == nil, elapsed)
		if err != nil {
			res.Error = err.Error()
			report.Steps = append(report.Steps, res)
			s.log.Error("step failed", zap.String("step", step.Name), zap.Duration("duration", elapsed), zap.Error(err))
			runErr = err
			break
		}
		report.Steps = append(report.Steps, res)
		s.log.Info("step passed", zap.String("step", step.Name), zap.Duration("duration", elapsed))
	}

	report.Duration = time.Since(start)
	report.Context = s.tc.Snapshot()
	report.Passed = runErr == nil
	s.metrics.observeRun(report.Passed)
	if report.Passed {
		s.log.Info("scenario passed", zap.Duration("duration", report.Duration))
	}
	return report, runErr
}

func (s *Scenario) fail(format string, args ...any) error {
	return &AssertionError{Step: s.current, Message: fmt.Sprintf(format, args...)}
}

// send logs the request payload, performs the call and logs the response before any assertion runs
func (s *Scenario) send(desc string, payload any, call func() (*qfight.Response, error)) (*qfight.Response, error) {
	s.log.Info("request", zap.String("step", s.current), zap.String("desc", desc), zap.Any("payload", payload))
	resp, err := call()
	if err != nil {
		s.log.Error("request failed", zap.String("step", s.current), zap.String("desc", desc), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", desc, err)
	}
	s.log.Info("response",
		zap.String("step", s.current),
		zap.String("desc", desc),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", resp.Body))
	return resp, nil
}

func (s *Scenario) expectStatus(resp *qfight.Response, want int, desc string) error {
	if resp.StatusCode != want {
		return s.fail("%s: expected status %d, got %d: %s", desc, want, resp.StatusCode, truncate(resp.Body))
	}
	return nil
}

func decodeEnvelope[T any](s *Scenario, resp *qfight.Response, desc string) (*qfight.Envelope[T], error) {
	env, err := qfight.Decode[T](resp)
	if err != nil {
		return nil, s.fail("%s: %v", desc, err)
	}
	return env, nil
}

func (s *Scenario) login(ctx context.Context, username, password string) (*qfight.Response, error) {
	desc := "login " + username
	return s.send(desc, qfight.LoginRequest{Username: username, Password: password}, func() (*qfight.Response, error) {
		return s.client.Login(ctx, username, password)
	})
}

func (s *Scenario) fetchPlayer(ctx context.Context, accountID int64, desc string) (*qfight.Envelope[qfight.PlayerData], error) {
	resp, err := s.send(desc, map[string]int64{"account_id": accountID}, func() (*qfight.Response, error) {
		return s.client.GetPlayerData(ctx, accountID)
	})
	if err != nil {
		return nil, err
	}
	if err := s.expectStatus(resp, http.StatusOK, desc); err != nil {
		return nil, err
	}
	return decodeEnvelope[qfight.PlayerData](s, resp, desc)
}

func (s *Scenario) record(key string, value int64) error {
	if err := s.tc.Set(key, value); err != nil {
		return s.fail("%v", err)
	}
	return nil
}

func (s *Scenario) lookup(key string) (int64, error) {
	v, err := s.tc.Get(key)
	if err != nil {
		return 0, s.fail("%v", err)
	}
	return v, nil
}

func (s *Scenario) adminLogin(ctx context.Context) error {
	resp, err := s.login(ctx, s.cfg.AdminUsername, s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return s.fail("admin login failed with status %d: %s", resp.StatusCode, truncate(resp.Body))
	}
	env, err := decodeEnvelope[qfight.LoginData](s, resp, "admin login")
	if err != nil {
		return err
	}
	if env.Data.AccountID <= 0 {
		return s.fail("admin login returned no account_id")
	}
	return s.record(KeyAdminAccountID, env.Data.AccountID)
}

func (s *Scenario) registerPlayer(ctx context.Context) error {
	req := qfight.RegisterRequest{
		Username:   s.playerUsername,
		Password:   s.cfg.PlayerPassword,
		PlayerName: s.cfg.PlayerName,
		Role:       qfight.RolePlayer,
	}
	desc := "register " + s.playerUsername
	resp, err := s.send(desc, qfight.RegisterPayload{Username: s.cfg.AdminUsername, Req: req}, func() (*qfight.Response, error) {
		return s.client.Register(ctx, s.cfg.AdminUsername, req)
	})
	if err != nil {
		return err
	}
	if err := s.expectStatus(resp, http.StatusOK, desc); err != nil {
		return err
	}
	env, err := decodeEnvelope[qfight.RegisterData](s, resp, desc)
	if err != nil {
		return err
	}
	if !env.Success {
		return s.fail("%s: success is not true", desc)
	}
	if env.Data.AccountID <= 0 || env.Data.PlayerID <= 0 {
		return s.fail("%s: missing account_id or player_id", desc)
	}
	if err := s.record(KeyPlayerAccountID, env.Data.AccountID); err != nil {
		return err
	}
	return s.record(KeyPlayerID, env.Data.PlayerID)
}

func (s *Scenario) loginPlayer(ctx context.Context) error {
	accountID, err := s.lookup(KeyPlayerAccountID)
	if err != nil {
		return err
	}

	resp, err := s.login(ctx, s.playerUsername, s.cfg.PlayerPassword)
	if err != nil {
		return err
	}
	if err := s.expectStatus(resp, http.StatusOK, "player login"); err != nil {
		return err
	}
	env, err := decodeEnvelope[qfight.LoginData](s, resp, "player login")
	if err != nil {
		return err
	}
	if env.Data.AccountID != accountID {
		return s.fail("player login returned account_id %d, expected %d", env.Data.AccountID, accountID)
	}

	resp, err = s.login(ctx, s.playerUsername, wrongPassword)
	if err != nil {
		return err
	}
	if err := s.expectStatus(resp, http.StatusUnauthorized, "login with wrong password"); err != nil {
		return err
	}

	unknown := "no_user_" + strconv.FormatFloat(float64(s.now().UnixNano())/1e9, 'f', -1, 64)
	resp, err = s.login(ctx, unknown, "123456")
	if err != nil {
		return err
	}
	return s.expectStatus(resp, http.StatusUnauthorized, "login with unknown user")
}

func (s *Scenario) getPlayerData(ctx context.Context) error {
	accountID, err := s.lookup(KeyPlayerAccountID)
	if err != nil {
		return err
	}
	desc := "get player data"
	resp, err := s.send(desc, map[string]int64{"account_id": accountID}, func() (*qfight.Response, error) {
		return s.client.GetPlayerData(ctx, accountID)
	})
	if err != nil {
		return err
	}
	if err := s.expectStatus(resp, http.StatusOK, desc); err != nil {
		return err
	}

	// decoded loosely so the JSON kinds of weapons and dressing can be checked
	env, err := decodeEnvelope[map[string]json.RawMessage](s, resp, desc)
	if err != nil {
		return err
	}
	if !env.Success {
		return s.fail("%s: success is not true", desc)
	}
	var got int64
	if err := json.Unmarshal(env.Data["account_id"], &got); err != nil || got != accountID {
		return s.fail("%s: account_id %s, expected %d", desc, env.Data["account_id"], accountID)
	}
	var weapons []any
	if err := json.Unmarshal(env.Data["weapons"], &weapons); err != nil || weapons == nil {
		return s.fail("%s: weapons is not a list: %s", desc, env.Data["weapons"])
	}
	var dressing map[string]any
	if err := json.Unmarshal(env.Data["dressing"], &dressing); err != nil || dressing == nil {
		return s.fail("%s: dressing is not an object: %s", desc, env.Data["dressing"])
	}
	return nil
}

func (s *Scenario) updatePlayerData(ctx context.Context) error {
	accountID, err := s.lookup(KeyPlayerAccountID)
	if err != nil {
		return err
	}
	adminID, err := s.lookup(KeyAdminAccountID)
	if err != nil {
		return err
	}

	self := qfight.UpdateRequest{
		AccountID: accountID,
		Level:     qfight.Ptr(10),
		Gold:      qfight.Ptr(1000),
		Str:       qfight.Ptr(15),
		Weapons:   qfight.Ptr([]string{"青龙刀", "金箍棒"}),
	}
	if err := s.update(ctx, s.playerUsername, self, http.StatusOK, "player updates own data"); err != nil {
		return err
	}
	env, err := s.fetchPlayer(ctx, accountID, "re-fetch after self update")
	if err != nil {
		return err
	}
	if env.Data.Level != 10 || env.Data.Gold != 1000 {
		return s.fail("self update not applied: level=%d gold=%d, expected level=10 gold=1000", env.Data.Level, env.Data.Gold)
	}

	byAdmin := qfight.UpdateRequest{AccountID: accountID, Exp: qfight.Ptr(500), Agi: qfight.Ptr(20)}
	if err := s.update(ctx, s.cfg.AdminUsername, byAdmin, http.StatusOK, "admin updates player data"); err != nil {
		return err
	}

	other := qfight.UpdateRequest{AccountID: adminID, Level: qfight.Ptr(99)}
	return s.update(ctx, s.playerUsername, other, http.StatusForbidden, "player updates admin data")
}

func (s *Scenario) update(ctx context.Context, caller string, req qfight.UpdateRequest, want int, desc string) error {
	resp, err := s.send(desc, qfight.UpdatePayload{Username: caller, Req: req}, func() (*qfight.Response, error) {
		return s.client.UpdatePlayer(ctx, caller, req)
	})
	if err != nil {
		return err
	}
	return s.expectStatus(resp, want, desc)
}

func (s *Scenario) resetPlayerData(ctx context.Context) error {
	accountID, err := s.lookup(KeyPlayerAccountID)
	if err != nil {
		return err
	}

	if err := s.reset(ctx, s.cfg.AdminUsername, accountID, http.StatusOK, "admin resets player data"); err != nil {
		return err
	}
	env, err := s.fetchPlayer(ctx, accountID, "re-fetch after reset")
	if err != nil {
		return err
	}
	if env.Data.Level != 1 || env.Data.Gold != 500 {
		return s.fail("reset not applied: level=%d gold=%d, expected level=1 gold=500", env.Data.Level, env.Data.Gold)
	}

	return s.reset(ctx, s.playerUsername, accountID, http.StatusForbidden, "player resets own data")
}

func (s *Scenario) reset(ctx context.Context, caller string, accountID int64, want int, desc string) error {
	resp, err := s.send(desc, caller, func() (*qfight.Response, error) {
		return s.client.ResetPlayer(ctx, caller, accountID)
	})
	if err != nil {
		return err
	}
	return s.expectStatus(resp, want, desc)
}

// IsAssertion reports whether err is a failed expectation rather than a transport problem
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// truncate shortens a body for error messages without splitting a UTF-8 sequence
func truncate(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
