package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/lmittmann/tint"

	"github.com/WasedaCreators/seiseki-viewer/lib/configutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/restyutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/serviceutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/sqliteutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/telemetry"
	"github.com/WasedaCreators/seiseki-viewer/services/admin"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport"
	gradedb "github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/portal"
	"github.com/WasedaCreators/seiseki-viewer/services/labsurvey"
	surveydb "github.com/WasedaCreators/seiseki-viewer/services/labsurvey/db"
)

type Config struct {
	Port     int    `json:"port"`
	Database string `json:"database"`
	// candidate locations of the required-course csv
	RequirementFiles []string `json:"requirement_files"`
	// run chrome with a window, for selector debugging
	Headful bool `json:"headful"`
	// overrides of the grading policy, each falls back to the built-in
	// default when absent
	GradeValues        map[string]int `json:"grade_values"`
	ExclusionMarkers   []string       `json:"exclusion_markers"`
	RequiredPrefix     string         `json:"required_prefix"`
	RequiredDepartment string         `json:"required_department"`
	AllowedYears       []string       `json:"allowed_years"`

	LabSurvey labsurvey.Config `json:"lab_survey"`
	// when set, outgoing http exchanges are dumped here at debug level
	HttpDumpDir string `json:"http_dump_dir"`
}

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}),
	))

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.Database == "" {
		config.Database = "gpadata.db"
	}
	if len(config.RequirementFiles) == 0 {
		config.RequirementFiles = []string{
			"list/hisshu.csv",
			"../list/hisshu.csv",
			"/app/list/hisshu.csv",
		}
	}

	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "seiseki-viewer")
	if os.IsNotExist(err) {
		slog.Info("no telemetry config found, running without exporters")
	} else if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	} else {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}

	database, err := sqliteutil.OpenDB(gradedb.Schema+"\n"+surveydb.Schema, config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	rules := gradereport.DefaultRules()
	if len(config.GradeValues) > 0 {
		rules.GradeValues = config.GradeValues
	}
	if len(config.ExclusionMarkers) > 0 {
		rules.ExclusionMarkers = config.ExclusionMarkers
	}
	if config.RequiredPrefix != "" {
		rules.RequiredPrefix = config.RequiredPrefix
	}
	if config.RequiredDepartment != "" {
		rules.RequiredDepartment = config.RequiredDepartment
	}
	if len(config.AllowedYears) > 0 {
		rules.AllowedYears = config.AllowedYears
	}

	var dumpOutput restyutil.InstrumentOutput
	if config.HttpDumpDir != "" {
		dumpOutput = restyutil.NewFilesystemOutput(config.HttpDumpDir)
	}

	queue := labsurvey.NewQueue(ctx, database, config.LabSurvey, dumpOutput)
	grades := gradereport.NewService(database, gradereport.Options{
		RequirementPaths: config.RequirementFiles,
		Rules:            rules,
		Pages:            portal.DefaultPages(),
		Headful:          config.Headful,
		Survey:           queue,
	})
	admins := admin.NewService(database)

	mux := http.NewServeMux()
	registerGradeRoutes(mux, grades)
	registerAdminRoutes(mux, admins)
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		w.WriteHeader(http.StatusNoContent)
	})

	serviceutil.StartHttpServer(config.Port, mux)
}

// the frontend is served from a different origin
func setCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Admin-Token")
}
