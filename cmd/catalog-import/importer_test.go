package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestImporter(serverURL string) *Importer {
	return NewImporter(newAPIClient(serverURL, 5*time.Second), zap.NewNop())
}

func sampleFiles(t *testing.T) Files {
	dir := t.TempDir()
	return Files{
		Owners: writeCSV(t, dir, "owners.csv",
			"matricula,name,area\nM001,Ana Souza,Finance\nM002,Bruno Lima,IT\n"),
		Technologies: writeCSV(t, dir, "technologies.csv",
			"name,category,maturity_level,adoption_score\nGo,Language,MADURA,80\nPostgreSQL,Database,MADURA,\n"),
		// Child listed before its parent.
		Capabilities: writeCSV(t, dir, "capabilities.csv",
			"name,criticality,parent\nInvoicing,ALTA,Finance\nFinance,ALTA,\n"),
		Applications: writeCSV(t, dir, "applications.csv",
			"name,lifecycle_phase,technologies,capabilities,estimated_cost,related_applications\n"+
				"Billing,PRODUCAO,go;postgresql,Invoicing,1200.50,\n"+
				"Portal,PRODUCAO,Go,,,Billing\n"),
		Skills: writeCSV(t, dir, "skills.csv",
			"code,name,technologies,developers\nSK-GO,Go development,Go:4:2024-01-01;PostgreSQL:3:2023-06-01:2024-12-31,M001:5:2024-03-15;M002:2\n"),
	}
}

func TestImporter_Run(t *testing.T) {
	api, srv := newFakeAPI(t)

	report, err := newTestImporter(srv.URL).Run(context.Background(), sampleFiles(t))
	require.NoError(t, err)
	require.Zero(t, report.Failed(), report.Kinds)

	for _, k := range report.Kinds {
		assert.Zero(t, k.Skipped, k.Kind)
	}
	assert.Equal(t, 2, report.kind(kindOwners).Created)
	assert.Equal(t, 2, report.kind(kindTechnologies).Created)
	assert.Equal(t, 2, report.kind(kindCapabilities).Created)
	assert.Equal(t, 2, report.kind(kindApplications).Created)
	assert.Equal(t, 1, report.kind(kindSkills).Created)

	goTech := api.find(kindTechnologies, "name", "Go")
	pgTech := api.find(kindTechnologies, "name", "PostgreSQL")
	require.NotNil(t, goTech)
	require.NotNil(t, pgTech)
	assert.Equal(t, float64(80), goTech["adoptionScore"])
	assert.Nil(t, pgTech["adoptionScore"])

	finance := api.find(kindCapabilities, "name", "Finance")
	invoicing := api.find(kindCapabilities, "name", "Invoicing")
	require.NotNil(t, finance)
	require.NotNil(t, invoicing)
	assert.Equal(t, finance["id"], invoicing["parentId"])

	billing := api.find(kindApplications, "name", "Billing")
	require.NotNil(t, billing)
	assert.Equal(t, []any{goTech["id"], pgTech["id"]}, billing["relatedTechnologies"])
	assert.Equal(t, []any{invoicing["id"]}, billing["relatedCapabilities"])
	assert.InDelta(t, 1200.50, billing["estimatedCost"], 0.001)

	portal := api.find(kindApplications, "name", "Portal")
	require.NotNil(t, portal)
	assert.Equal(t, []any{billing["id"]}, portal["relatedApplications"])

	skill := api.find(kindSkills, "code", "SK-GO")
	require.NotNil(t, skill)
	techs := skill["technologies"].([]any)
	require.Len(t, techs, 2)
	first := techs[0].(map[string]any)
	assert.Equal(t, goTech["id"], first["technologyId"])
	assert.Equal(t, float64(4), first["proficiencyLevel"])
	assert.Equal(t, "2024-01-01", first["startDate"])
	assert.Nil(t, first["endDate"])
	assert.Equal(t, "2024-12-31", techs[1].(map[string]any)["endDate"])

	devs := skill["developers"].([]any)
	require.Len(t, devs, 2)
	ana := api.find(kindOwners, "matricula", "M001")
	assert.Equal(t, ana["id"], devs[0].(map[string]any)["ownerId"])
	assert.Equal(t, "2024-03-15", devs[0].(map[string]any)["certificationDate"])
	assert.Nil(t, devs[1].(map[string]any)["certificationDate"])
}

func TestImporter_Run_RerunSkipsExisting(t *testing.T) {
	api, srv := newFakeAPI(t)
	files := sampleFiles(t)

	_, err := newTestImporter(srv.URL).Run(context.Background(), files)
	require.NoError(t, err)
	postsAfterFirst := api.posts

	report, err := newTestImporter(srv.URL).Run(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, postsAfterFirst, api.posts, "second run must not create anything")
	assert.Zero(t, report.Failed())
	assert.Equal(t, 2, report.kind(kindOwners).Skipped)
	assert.Equal(t, 1, report.kind(kindSkills).Skipped)
}

func TestImporter_Run_MatchesNamesCaseInsensitively(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.seed(kindTechnologies, map[string]any{"name": "Kubernetes"})
	dir := t.TempDir()

	report, err := newTestImporter(srv.URL).Run(context.Background(), Files{
		Technologies: writeCSV(t, dir, "t.csv", "name\nkubernetes\n"),
		Applications: writeCSV(t, dir, "a.csv", "name,technologies\nCluster,KUBERNETES\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.kind(kindTechnologies).Skipped)
	assert.Equal(t, 1, report.kind(kindApplications).Created)
}

func TestImporter_Run_RowFailures(t *testing.T) {
	_, srv := newFakeAPI(t)
	dir := t.TempDir()

	report, err := newTestImporter(srv.URL).Run(context.Background(), Files{
		Capabilities: writeCSV(t, dir, "c.csv",
			"name,parent,coverage_score\nLoopA,LoopB,\nLoopB,LoopA,\nOrphan,Nowhere,\nScored,,high\n"),
		Applications: writeCSV(t, dir, "a.csv",
			"name,technologies\nGhost,Unknown Tech\nrejected-app,\n,\nFine,\n"),
	})
	require.NoError(t, err)

	caps := report.kind(kindCapabilities)
	assert.Zero(t, caps.Created)
	require.Len(t, caps.Errors, 4)
	assert.Contains(t, caps.Errors[0], "Nowhere")
	assert.Contains(t, caps.Errors[1], "coverage_score")
	assert.Contains(t, caps.Errors[2], "never created")
	assert.Contains(t, caps.Errors[3], "never created")

	apps := report.kind(kindApplications)
	assert.Equal(t, 1, apps.Created)
	require.Len(t, apps.Errors, 2)
	assert.Contains(t, apps.Errors[0], `unknown technology "Unknown Tech"`)
	assert.Contains(t, apps.Errors[1], "400")

	assert.Equal(t, 6, report.Failed())
}

func TestImporter_Run_ConflictCountsAsSkipped(t *testing.T) {
	api, srv := newFakeAPI(t)
	dir := t.TempDir()
	imp := newTestImporter(srv.URL)

	// Prime the index, then let another writer create the owner.
	_, err := imp.index(context.Background(), kindOwners)
	require.NoError(t, err)
	api.seed(kindOwners, map[string]any{"matricula": "M009"})

	report, err := imp.Run(context.Background(), Files{
		Owners: writeCSV(t, dir, "o.csv", "matricula,name\nM009,Late\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.kind(kindOwners).Skipped)
	assert.Zero(t, report.Failed())
}

func TestImporter_Run_MissingFile(t *testing.T) {
	_, srv := newFakeAPI(t)

	_, err := newTestImporter(srv.URL).Run(context.Background(), Files{Owners: "/does/not/exist.csv"})
	assert.Error(t, err)
}

func TestReport_Print(t *testing.T) {
	color.NoColor = true
	report := &Report{}
	report.kind(kindOwners).Created = 2
	report.kind(kindSkills).fail(record{line: 3}, assert.AnError)

	var buf bytes.Buffer
	report.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "owners")
	assert.Contains(t, out, "skills line 3: "+assert.AnError.Error()+"\n")
	assert.Equal(t, 1, report.Failed())
}

func TestRootCommand(t *testing.T) {
	api, srv := newFakeAPI(t)
	dir := t.TempDir()
	owners := writeCSV(t, dir, "owners.csv", "matricula,name\nM100,Carla\n")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--api", srv.URL, "--owners", owners})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "owners")
	assert.NotNil(t, api.find(kindOwners, "matricula", "M100"))
}

func TestRootCommand_NothingToImport(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to import")
}

func TestRootCommand_FailedRowsReturnError(t *testing.T) {
	_, srv := newFakeAPI(t)
	dir := t.TempDir()
	apps := writeCSV(t, dir, "a.csv", "name\nrejected\n")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api", srv.URL, "--applications", apps})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 rows failed")
}
