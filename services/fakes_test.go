package services

import (
	"context"
	"io"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
	"github.com/liguebillard/federation-admin/storage"
)

// In-memory fakes backing the service tests. Each fake keeps just enough
// state for the scenarios exercised here.

type fakePlayerRepo struct {
	players map[string]*models.Player // keyed by normalized licence
	names   map[string]bool           // known display names
	created []*models.Player

	createErr error
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		players: make(map[string]*models.Player),
		names:   make(map[string]bool),
	}
}

func (f *fakePlayerRepo) add(p models.Player) {
	f.players[models.NormalizeLicence(p.Licence)] = &p
}

func (f *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if f.createErr != nil {
		return f.createErr
	}
	licence := models.NormalizeLicence(player.Licence)
	if _, ok := f.players[licence]; ok {
		return repositories.ErrPlayerLicenceConflict
	}
	player.ID = len(f.players) + 1
	f.players[licence] = player
	f.created = append(f.created, player)
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	for _, p := range f.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *fakePlayerRepo) GetByLicence(ctx context.Context, exec repositories.SQLExecutor, licence string) (*models.Player, error) {
	p, ok := f.players[models.NormalizeLicence(licence)]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakePlayerRepo) ExistsByName(ctx context.Context, fullName string) (bool, error) {
	return f.names[fullName], nil
}

func (f *fakePlayerRepo) List(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	players := make([]models.Player, 0, len(f.players))
	for _, p := range f.players {
		players = append(players, *p)
	}
	return players, nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, player *models.Player) error {
	f.players[models.NormalizeLicence(player.Licence)] = player
	return nil
}

func (f *fakePlayerRepo) Delete(ctx context.Context, id int) error { return nil }

func (f *fakePlayerRepo) ListByLicences(ctx context.Context, licences []string) ([]models.Player, error) {
	players := make([]models.Player, 0, len(licences))
	for _, licence := range licences {
		if p, ok := f.players[models.NormalizeLicence(licence)]; ok {
			players = append(players, *p)
		}
	}
	return players, nil
}

type fakeCategoryRepo struct {
	categories map[int]models.Category
}

func newFakeCategoryRepo(categories ...models.Category) *fakeCategoryRepo {
	byID := make(map[int]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return &fakeCategoryRepo{categories: byID}
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	return &c, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(f.categories))
	for _, c := range f.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

type fakeTournamentRepo struct {
	tournaments map[int]models.Tournament
}

func newFakeTournamentRepo(tournaments ...models.Tournament) *fakeTournamentRepo {
	byID := make(map[int]models.Tournament, len(tournaments))
	for _, t := range tournaments {
		byID[t.ID] = t
	}
	return &fakeTournamentRepo{tournaments: byID}
}

func (f *fakeTournamentRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if t.ID == 0 {
		t.ID = len(f.tournaments) + 1
	}
	f.tournaments[t.ID] = *t
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (f *fakeTournamentRepo) FindByTriple(ctx context.Context, categoryID, tournamentNumber int, season string) (*models.Tournament, error) {
	for _, t := range f.tournaments {
		if t.CategoryID == categoryID && t.TournamentNumber == tournamentNumber && t.Season == season {
			return &t, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments := make([]models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	delete(f.tournaments, id)
	return nil
}

func (f *fakeTournamentRepo) ListCategorySeasons(ctx context.Context) ([]repositories.CategorySeason, error) {
	return nil, nil
}

type fakeResultRepo struct {
	counts map[int]int
}

func (f *fakeResultRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, results []*models.TournamentResult) error {
	return nil
}

func (f *fakeResultRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	return nil
}

func (f *fakeResultRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	return f.counts[tournamentID], nil
}

func (f *fakeResultRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentResult, error) {
	return nil, nil
}

func (f *fakeResultRepo) AggregateByCategorySeason(ctx context.Context, categoryID int, season string) ([]repositories.ResultAggregate, error) {
	return nil, nil
}

type fakeRankingRepo struct {
	rankings []models.Ranking
}

func (f *fakeRankingRepo) ListByCategorySeason(ctx context.Context, categoryID int, season string) ([]models.Ranking, error) {
	return f.rankings, nil
}

func (f *fakeRankingRepo) Replace(ctx context.Context, exec repositories.SQLExecutor, categoryID int, season string, rankings []*models.Ranking) error {
	return nil
}

type fakeCampaignRepo struct {
	sent   map[string]bool
	logged []models.CampaignEmail
}

func newFakeCampaignRepo(sentLicences ...string) *fakeCampaignRepo {
	sent := make(map[string]bool, len(sentLicences))
	for _, l := range sentLicences {
		sent[models.NormalizeLicence(l)] = true
	}
	return &fakeCampaignRepo{sent: sent}
}

func (f *fakeCampaignRepo) SentLicences(ctx context.Context, target repositories.CampaignTarget) (map[string]bool, error) {
	return f.sent, nil
}

func (f *fakeCampaignRepo) LogSent(ctx context.Context, target repositories.CampaignTarget, licence, recipient string) error {
	f.logged = append(f.logged, models.CampaignEmail{Kind: target.Kind, Licence: licence, Recipient: recipient})
	return nil
}

type sentMail struct {
	to          []string
	subject     string
	attachments []EmailAttachment
}

type fakeMailer struct {
	sent    []sentMail
	failFor map[string]error // keyed by recipient address
}

func (f *fakeMailer) Send(to []string, subject, htmlBody string, attachments []EmailAttachment) error {
	if len(to) == 1 && f.failFor != nil {
		if err, ok := f.failFor[to[0]]; ok {
			return err
		}
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, attachments: attachments})
	return nil
}

func (f *fakeMailer) RenderTemplate(name string, data interface{}) (string, error) {
	return "<html>" + name + "</html>", nil
}

type fakeSettingRepo struct {
	values   map[string]string
	getCalls int
}

func newFakeSettingRepo(values map[string]string) *fakeSettingRepo {
	if values == nil {
		values = make(map[string]string)
	}
	return &fakeSettingRepo{values: values}
}

func (f *fakeSettingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, repositories.ErrSettingNotFound
	}
	return &models.Setting{Key: key, Value: v}, nil
}

func (f *fakeSettingRepo) GetAll(ctx context.Context) ([]models.Setting, error) {
	f.getCalls++
	settings := make([]models.Setting, 0, len(f.values))
	for k, v := range f.values {
		settings = append(settings, models.Setting{Key: k, Value: v})
	}
	return settings, nil
}

func (f *fakeSettingRepo) UpsertMany(ctx context.Context, exec repositories.SQLExecutor, values map[string]string) error {
	for k, v := range values {
		f.values[k] = v
	}
	return nil
}

type fakeUploader struct {
	lastKey string
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.lastKey = key
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
