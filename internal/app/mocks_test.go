package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/example/levelup/internal/metrics"
	"github.com/example/levelup/internal/ports/secondary"
)

// ============================================================================
// Config source
// ============================================================================

type fakeConfigSource struct {
	mu        sync.Mutex
	catalog   []byte
	templates map[string][]byte
	readErr   error
	reads     map[string]int
}

func newFakeConfigSource() *fakeConfigSource {
	return &fakeConfigSource{
		catalog:   []byte(testCatalog),
		templates: map[string][]byte{"ic-swe-journey": []byte(testTemplate)},
		reads:     make(map[string]int),
	}
}

func (f *fakeConfigSource) ReadSignalCatalog(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads["catalog"]++
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.catalog == nil {
		return nil, fmt.Errorf("catalog: %w", secondary.ErrDocumentNotFound)
	}
	return f.catalog, nil
}

func (f *fakeConfigSource) ReadTemplate(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[name]++
	if f.readErr != nil {
		return nil, f.readErr
	}
	data, ok := f.templates[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, secondary.ErrDocumentNotFound)
	}
	return data, nil
}

func (f *fakeConfigSource) ListTemplates(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.templates))
	for name := range f.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeConfigSource) readCount(doc string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[doc]
}

const testCatalog = `{
  "signals": [
    {"id": "ownership", "name": "Ownership", "roles": ["ic", "em"]},
    {"id": "execution", "name": "Execution", "roles": ["ic", "em"]},
    {"id": "craft", "name": "Craft", "roles": ["ic"]},
    {"id": "collaboration", "name": "Collaboration", "roles": ["ic", "em"]}
  ],
  "company_archetypes": [],
  "roles": []
}`

const testTemplate = `{
  "version": "2.0",
  "journey": {
    "title": "IC Software Engineer Interview Prep",
    "description": "Behavioral stories",
    "duration_weeks": 4,
    "story_slots": [
      {"id": "big-impact", "title": "Big impact", "signals": ["ownership", "execution"]},
      {"id": "hard-problem", "title": "Hard problem", "signals": ["craft"], "estimated_minutes": 60},
      {"id": "teamwork", "title": "Teamwork", "signals": ["collaboration", "craft"], "framework": "STAR", "display_order": 7}
    ],
    "sparc_micro_prompts": {
      "situation": ["Where were you?", "Who was involved?"],
      "coda": ["What did you learn?"]
    }
  }
}`

// ============================================================================
// Transactor
// ============================================================================

type mockTransactor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

// ============================================================================
// Repositories
// ============================================================================

type mockJourneyRepository struct {
	mu        sync.Mutex
	journeys  map[int64]*secondary.JourneyRecord
	nextID    int64
	creates   int
	createErr error
	findErr   error
}

func newMockJourneyRepository() *mockJourneyRepository {
	return &mockJourneyRepository{journeys: make(map[int64]*secondary.JourneyRecord), nextID: 1}
}

func (m *mockJourneyRepository) Create(ctx context.Context, j *secondary.JourneyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.journeys {
		if existing.Title == j.Title {
			return fmt.Errorf("journey %q: %w", j.Title, secondary.ErrDuplicate)
		}
	}
	j.ID = m.nextID
	m.nextID++
	stored := *j
	m.journeys[j.ID] = &stored
	return nil
}

func (m *mockJourneyRepository) GetByID(ctx context.Context, id int64) (*secondary.JourneyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.journeys[id]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("journey %d: %w", id, secondary.ErrNotFound)
}

func (m *mockJourneyRepository) FindByTitle(ctx context.Context, title string) (*secondary.JourneyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, j := range m.journeys {
		if j.Title == title {
			return j, nil
		}
	}
	return nil, nil
}

func (m *mockJourneyRepository) List(ctx context.Context) ([]*secondary.JourneyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.JourneyRecord
	for id := int64(1); id < m.nextID; id++ {
		if j, ok := m.journeys[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockJourneyRepository) SetActive(ctx context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.journeys[id]
	if !ok {
		return fmt.Errorf("journey %d: %w", id, secondary.ErrNotFound)
	}
	j.IsActive = active
	return nil
}

type mockJourneyConfigRepository struct {
	configs   map[int64]*secondary.JourneyConfigRecord
	upsertErr error
}

func newMockJourneyConfigRepository() *mockJourneyConfigRepository {
	return &mockJourneyConfigRepository{configs: make(map[int64]*secondary.JourneyConfigRecord)}
}

func (m *mockJourneyConfigRepository) Upsert(ctx context.Context, cfg *secondary.JourneyConfigRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.configs[cfg.JourneyID] = cfg
	return nil
}

func (m *mockJourneyConfigRepository) GetByJourneyID(ctx context.Context, journeyID int64) (*secondary.JourneyConfigRecord, error) {
	if cfg, ok := m.configs[journeyID]; ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("config for journey %d: %w", journeyID, secondary.ErrNotFound)
}

type mockStorySlotRepository struct {
	mu       sync.Mutex
	slots    map[int64]*secondary.StorySlotRecord
	nextID   int64
	failKeys map[string]error
}

func newMockStorySlotRepository() *mockStorySlotRepository {
	return &mockStorySlotRepository{
		slots:    make(map[int64]*secondary.StorySlotRecord),
		nextID:   1,
		failKeys: make(map[string]error),
	}
}

func (m *mockStorySlotRepository) Create(ctx context.Context, slot *secondary.StorySlotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failKeys[slot.SlotKey]; err != nil {
		return err
	}
	slot.ID = m.nextID
	m.nextID++
	stored := *slot
	m.slots[slot.ID] = &stored
	return nil
}

func (m *mockStorySlotRepository) GetByID(ctx context.Context, id int64) (*secondary.StorySlotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("story slot %d: %w", id, secondary.ErrNotFound)
}

func (m *mockStorySlotRepository) ListByJourney(ctx context.Context, journeyID int64) ([]*secondary.StorySlotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*secondary.StorySlotRecord{}
	for _, s := range m.slots {
		if s.JourneyID == journeyID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockStorySlotRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

type mockStoryRepository struct {
	stories map[int64]*secondary.StoryRecord
	nextID  int64
}

func newMockStoryRepository() *mockStoryRepository {
	return &mockStoryRepository{stories: make(map[int64]*secondary.StoryRecord), nextID: 1}
}

func (m *mockStoryRepository) Create(ctx context.Context, st *secondary.StoryRecord) error {
	st.ID = m.nextID
	m.nextID++
	stored := *st
	m.stories[st.ID] = &stored
	return nil
}

func (m *mockStoryRepository) GetByID(ctx context.Context, id int64) (*secondary.StoryRecord, error) {
	if st, ok := m.stories[id]; ok {
		return st, nil
	}
	return nil, fmt.Errorf("story %d: %w", id, secondary.ErrNotFound)
}

func (m *mockStoryRepository) UpdateSection(ctx context.Context, id int64, column, content string) error {
	st, ok := m.stories[id]
	if !ok {
		return fmt.Errorf("story %d: %w", id, secondary.ErrNotFound)
	}
	switch column {
	case "situation":
		st.Situation = content
	case "problem":
		st.Problem = content
	case "actions":
		st.Actions = content
	case "results":
		st.Results = content
	case "coda":
		st.Coda = content
	case "star_situation":
		st.StarSituation = content
	case "star_task":
		st.StarTask = content
	case "star_action":
		st.StarAction = content
	case "star_result":
		st.StarResult = content
	case "sixty_second_version":
		st.SixtySecondVersion = content
	case "bullet_outline":
		st.BulletOutline = content
	default:
		return fmt.Errorf("unknown story column %q", column)
	}
	return nil
}

func (m *mockStoryRepository) MarkComplete(ctx context.Context, id int64) error {
	st, ok := m.stories[id]
	if !ok {
		return fmt.Errorf("story %d: %w", id, secondary.ErrNotFound)
	}
	st.IsComplete = true
	return nil
}

func (m *mockStoryRepository) ListByUserAndJourney(ctx context.Context, userID, journeyID int64) ([]*secondary.StoryRecord, error) {
	out := []*secondary.StoryRecord{}
	for id := int64(1); id < m.nextID; id++ {
		st, ok := m.stories[id]
		if ok && st.UserID == userID && st.JourneyID == journeyID {
			out = append(out, st)
		}
	}
	return out, nil
}

type mockSignalTagRepository struct {
	tags      map[int64]map[string]int
	upsertErr error
}

func newMockSignalTagRepository() *mockSignalTagRepository {
	return &mockSignalTagRepository{tags: make(map[int64]map[string]int)}
}

func (m *mockSignalTagRepository) Upsert(ctx context.Context, tag *secondary.SignalTagRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.tags[tag.StoryID] == nil {
		m.tags[tag.StoryID] = make(map[string]int)
	}
	m.tags[tag.StoryID][tag.SignalName] = tag.Strength
	return nil
}

func (m *mockSignalTagRepository) ListByStory(ctx context.Context, storyID int64) ([]*secondary.SignalTagRecord, error) {
	out := []*secondary.SignalTagRecord{}
	for name, strength := range m.tags[storyID] {
		out = append(out, &secondary.SignalTagRecord{StoryID: storyID, SignalName: name, Strength: strength})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignalName < out[j].SignalName })
	return out, nil
}

type mockCoverageReader struct {
	rows []*secondary.SignalCoverageRecord
	err  error
}

func (m *mockCoverageReader) SignalCoverage(ctx context.Context, journeyID, userID int64) ([]*secondary.SignalCoverageRecord, error) {
	return m.rows, m.err
}

type mockMicroPromptRepository struct {
	prompts []*secondary.MicroPromptRecord
	err     error
}

func (m *mockMicroPromptRepository) InsertIfAbsent(ctx context.Context, p *secondary.MicroPromptRecord) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, existing := range m.prompts {
		if existing.Section == p.Section && existing.PromptText == p.PromptText {
			return false, nil
		}
	}
	p.ID = int64(len(m.prompts) + 1)
	m.prompts = append(m.prompts, p)
	return true, nil
}

func (m *mockMicroPromptRepository) ListActiveBySection(ctx context.Context, section string) ([]*secondary.MicroPromptRecord, error) {
	out := []*secondary.MicroPromptRecord{}
	for _, p := range m.prompts {
		if p.Section == section && p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

type mockUserRepository struct {
	users  map[int64]*secondary.UserRecord
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*secondary.UserRecord), nextID: 1}
}

func (m *mockUserRepository) Create(ctx context.Context, u *secondary.UserRecord) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return fmt.Errorf("user %q: %w", u.Username, secondary.ErrDuplicate)
		}
	}
	u.ID = m.nextID
	m.nextID++
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*secondary.UserRecord, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, secondary.ErrNotFound)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*secondary.UserRecord, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, secondary.ErrNotFound)
}

// ============================================================================
// Fixture
// ============================================================================

type journeyFixture struct {
	source   *fakeConfigSource
	config   *ConfigServiceImpl
	tx       *mockTransactor
	journeys *mockJourneyRepository
	configs  *mockJourneyConfigRepository
	slots    *mockStorySlotRepository
	stories  *mockStoryRepository
	tags     *mockSignalTagRepository
	coverage *mockCoverageReader
	prompts  *mockMicroPromptRepository
}

func newJourneyFixture() *journeyFixture {
	source := newFakeConfigSource()
	return &journeyFixture{
		source:   source,
		config:   NewConfigService(source, zap.NewNop(), nil),
		tx:       &mockTransactor{},
		journeys: newMockJourneyRepository(),
		configs:  newMockJourneyConfigRepository(),
		slots:    newMockStorySlotRepository(),
		stories:  newMockStoryRepository(),
		tags:     newMockSignalTagRepository(),
		coverage: &mockCoverageReader{},
		prompts:  &mockMicroPromptRepository{},
	}
}

func (f *journeyFixture) service(opts MaterializeOptions) *JourneyServiceImpl {
	return NewJourneyService(f.config, JourneyRepositories{
		Tx:       f.tx,
		Journeys: f.journeys,
		Configs:  f.configs,
		Slots:    f.slots,
		Stories:  f.stories,
		Coverage: f.coverage,
		Prompts:  f.prompts,
	}, opts, zap.NewNop(), nil)
}

func (f *journeyFixture) storyService() *StoryServiceImpl {
	return NewStoryService(f.config, f.tx, f.journeys, f.slots, f.stories, f.tags)
}

// ============================================================================
// Task journeys
// ============================================================================

type fakeTaskSource struct {
	docs map[string][]byte
}

func (f *fakeTaskSource) ReadTaskJourney(ctx context.Context, name string) ([]byte, error) {
	data, ok := f.docs[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, secondary.ErrDocumentNotFound)
	}
	return data, nil
}

func (f *fakeTaskSource) ListTaskJourneys(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.docs))
	for name := range f.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type mockQuestionRepository struct {
	categories map[string]int64
	questions  map[int64]*secondary.QuestionRecord
	responses  map[[2]int64]*secondary.ResponseRecord
	nextID     int64
	upsertErr  error
}

func newMockQuestionRepository() *mockQuestionRepository {
	return &mockQuestionRepository{
		categories: make(map[string]int64),
		questions:  make(map[int64]*secondary.QuestionRecord),
		responses:  make(map[[2]int64]*secondary.ResponseRecord),
		nextID:     1,
	}
}

func (m *mockQuestionRepository) EnsureCategory(ctx context.Context, name string) (int64, error) {
	if id, ok := m.categories[name]; ok {
		return id, nil
	}
	id := int64(len(m.categories) + 1)
	m.categories[name] = id
	return id, nil
}

func (m *mockQuestionRepository) Create(ctx context.Context, q *secondary.QuestionRecord) error {
	q.ID = m.nextID
	m.nextID++
	stored := *q
	m.questions[q.ID] = &stored
	return nil
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id int64) (*secondary.QuestionRecord, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("question %d: %w", id, secondary.ErrNotFound)
}

func (m *mockQuestionRepository) UpsertResponse(ctx context.Context, r *secondary.ResponseRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	key := [2]int64{r.QuestionID, r.UserID}
	if existing, ok := m.responses[key]; ok {
		existing.Text = r.Text
		r.ID = existing.ID
		return nil
	}
	r.ID = int64(len(m.responses) + 1)
	stored := *r
	m.responses[key] = &stored
	return nil
}

func (m *mockQuestionRepository) ListResponses(ctx context.Context, userID int64, questionIDs []int64) (map[int64]*secondary.ResponseRecord, error) {
	out := make(map[int64]*secondary.ResponseRecord)
	for _, id := range questionIDs {
		if r, ok := m.responses[[2]int64{id, userID}]; ok {
			out[id] = r
		}
	}
	return out, nil
}

type mockJourneyTaskRepository struct {
	tasks  map[int64]*secondary.JourneyTaskRecord
	nextID int64
}

func newMockJourneyTaskRepository() *mockJourneyTaskRepository {
	return &mockJourneyTaskRepository{tasks: make(map[int64]*secondary.JourneyTaskRecord), nextID: 1}
}

func (m *mockJourneyTaskRepository) Create(ctx context.Context, t *secondary.JourneyTaskRecord) error {
	for _, existing := range m.tasks {
		if existing.JourneyID == t.JourneyID && existing.Order == t.Order {
			return fmt.Errorf("journey task %d: %w", t.Order, secondary.ErrDuplicate)
		}
	}
	t.ID = m.nextID
	m.nextID++
	stored := *t
	m.tasks[t.ID] = &stored
	return nil
}

func (m *mockJourneyTaskRepository) GetByID(ctx context.Context, id int64) (*secondary.JourneyTaskRecord, error) {
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("journey task %d: %w", id, secondary.ErrNotFound)
}

func (m *mockJourneyTaskRepository) ListByJourney(ctx context.Context, journeyID int64) ([]*secondary.JourneyTaskRecord, error) {
	out := []*secondary.JourneyTaskRecord{}
	for _, t := range m.tasks {
		if t.JourneyID == journeyID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *mockJourneyTaskRepository) CountByJourney(ctx context.Context, journeyID int64) (int, error) {
	n := 0
	for _, t := range m.tasks {
		if t.JourneyID == journeyID {
			n++
		}
	}
	return n, nil
}

type mockEnrollmentRepository struct {
	enrollments map[int64]*secondary.EnrollmentRecord
	progress    map[int64]map[int64]*secondary.TaskProgressRecord
	journeys    *mockJourneyRepository
	nextID      int64
}

func newMockEnrollmentRepository(journeys *mockJourneyRepository) *mockEnrollmentRepository {
	return &mockEnrollmentRepository{
		enrollments: make(map[int64]*secondary.EnrollmentRecord),
		progress:    make(map[int64]map[int64]*secondary.TaskProgressRecord),
		journeys:    journeys,
		nextID:      1,
	}
}

func (m *mockEnrollmentRepository) Enroll(ctx context.Context, e *secondary.EnrollmentRecord) (bool, error) {
	if existing, err := m.Get(ctx, e.UserID, e.JourneyID); err == nil {
		*e = *existing
		return false, nil
	}
	e.ID = m.nextID
	m.nextID++
	e.Status = "active"
	e.EnrolledAt = "2026-03-01T09:00:00Z"
	if j, ok := m.journeys.journeys[e.JourneyID]; ok {
		e.JourneyTitle = j.Title
	}
	stored := *e
	m.enrollments[e.ID] = &stored
	return true, nil
}

func (m *mockEnrollmentRepository) Get(ctx context.Context, userID, journeyID int64) (*secondary.EnrollmentRecord, error) {
	for _, e := range m.enrollments {
		if e.UserID == userID && e.JourneyID == journeyID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("enrollment of user %d in journey %d: %w", userID, journeyID, secondary.ErrNotFound)
}

func (m *mockEnrollmentRepository) ListByUser(ctx context.Context, userID int64) ([]*secondary.EnrollmentRecord, error) {
	out := []*secondary.EnrollmentRecord{}
	for id := int64(1); id < m.nextID; id++ {
		if e, ok := m.enrollments[id]; ok && e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepository) UpdateCompletion(ctx context.Context, id int64, percent float64, completed bool) error {
	e, ok := m.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment %d: %w", id, secondary.ErrNotFound)
	}
	e.CompletionPercentage = percent
	if completed {
		e.Status = "completed"
		if e.CompletedAt == "" {
			e.CompletedAt = "2026-03-09T09:00:00Z"
		}
	}
	return nil
}

func (m *mockEnrollmentRepository) CompleteTask(ctx context.Context, p *secondary.TaskProgressRecord) error {
	if m.progress[p.EnrollmentID] == nil {
		m.progress[p.EnrollmentID] = make(map[int64]*secondary.TaskProgressRecord)
	}
	stored := *p
	stored.Status = "completed"
	stored.CompletedAt = "2026-03-02T09:00:00Z"
	m.progress[p.EnrollmentID][p.TaskID] = &stored
	return nil
}

func (m *mockEnrollmentRepository) ListTaskProgress(ctx context.Context, enrollmentID int64) (map[int64]*secondary.TaskProgressRecord, error) {
	out := make(map[int64]*secondary.TaskProgressRecord)
	for id, p := range m.progress[enrollmentID] {
		out[id] = p
	}
	return out, nil
}

func (m *mockEnrollmentRepository) CountCompletedTasks(ctx context.Context, enrollmentID int64) (int, error) {
	return len(m.progress[enrollmentID]), nil
}

const testTaskJourney = `{
  "version": "1.0",
  "journey": {
    "title": "Talks",
    "description": "Weekly conversations",
    "questions": [
      {"category": "Foundation", "week": 1, "title": "Core Values", "prompt": "What guides you?", "details": ["Where did it start?"]},
      {"category": "Foundation", "week": 2, "title": "First Meeting", "prompt": "How did you meet?"},
      {"category": "Future", "week": 3, "title": "Dreams", "prompt": "Where are you going?"}
    ]
  }
}`

type taskFixture struct {
	*journeyFixture
	taskSource  *fakeTaskSource
	questions   *mockQuestionRepository
	tasks       *mockJourneyTaskRepository
	enrollments *mockEnrollmentRepository
}

func newTaskFixture() *taskFixture {
	jf := newJourneyFixture()
	return &taskFixture{
		journeyFixture: jf,
		taskSource:     &fakeTaskSource{docs: map[string][]byte{"talks": []byte(testTaskJourney)}},
		questions:      newMockQuestionRepository(),
		tasks:          newMockJourneyTaskRepository(),
		enrollments:    newMockEnrollmentRepository(jf.journeys),
	}
}

func (f *taskFixture) taskService(m *metrics.Metrics) *TaskServiceImpl {
	return NewTaskService(f.taskSource, TaskRepositories{
		Tx:          f.tx,
		Journeys:    f.journeys,
		Questions:   f.questions,
		Tasks:       f.tasks,
		Enrollments: f.enrollments,
	}, f.service(MaterializeOptions{}), zap.NewNop(), m)
}
