package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/GoMaternal/internal/dataset"
	"github.com/Skufu/GoMaternal/internal/observation"
	"github.com/Skufu/GoMaternal/internal/report"
	"github.com/Skufu/GoMaternal/internal/risk"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type reportRenderer interface {
	Render(lines []observation.Line, label string) ([]byte, error)
}

type server struct {
	db         HealthChecker
	classifier risk.Classifier
	backend    string
	reports    reportRenderer
	dataset    *dataset.Table
	log        *zap.Logger
}

type formField struct {
	observation.Field
	Value string
}

type homePage struct {
	Tab          string
	Fields       []formField
	Label        string
	Heuristic    bool
	Error        string
	ReportError  string
	ReportHref   template.URL
	DownloadName string
}

type distributionBar struct {
	Category string
	Count    int
	Percent  float64
}

type datasetPage struct {
	Tab          string
	Table        *dataset.Table
	Distribution []distributionBar
	Error        string
}

type predictResponse struct {
	Label       string          `json:"label"`
	Class       int             `json:"class"`
	Source      string          `json:"source"`
	Report      *reportEnvelope `json:"report,omitempty"`
	ReportError string          `json:"reportError,omitempty"`
}

type reportEnvelope struct {
	Filename string `json:"filename"`
	DataURI  string `json:"dataUri"`
}

func setupRouter(s *server) *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(s.log),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.tmpl")))

	router.GET("/", s.home)
	router.POST("/predict", s.predictForm)
	router.GET("/dataset", s.datasetPage)
	router.GET("/about", func(c *gin.Context) {
		c.HTML(http.StatusOK, "about.tmpl", gin.H{"Tab": "about"})
	})

	api := router.Group("/api")
	api.POST("/predict", s.predictJSON)
	api.POST("/report", s.reportPDF)
	api.GET("/dataset/distribution", s.distributionJSON)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if s.db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	return router
}

func newHomePage(obs observation.Observation) homePage {
	fields := make([]formField, 0, observation.NumFeatures)
	for _, f := range observation.Fields() {
		fields = append(fields, formField{Field: f, Value: f.Format(obs.Value(f.Column))})
	}
	return homePage{Tab: "home", Fields: fields, DownloadName: report.DownloadName}
}

func (s *server) home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", newHomePage(observation.Default()))
}

func (s *server) predictForm(c *gin.Context) {
	obs := observation.FromForm(c.PostForm)
	page := newHomePage(obs)

	assessment, err := risk.Assess(c.Request.Context(), s.classifier, obs)
	if err != nil {
		_ = c.Error(err)
		page.Error = "Prediction failed. Please try again."
		c.HTML(http.StatusBadGateway, "home.tmpl", page)
		return
	}
	page.Label = assessment.Label.String()
	page.Heuristic = s.backend == backendRules

	pdf, err := s.render(c, assessment)
	if err != nil {
		page.ReportError = "The PDF report could not be generated."
		c.HTML(http.StatusOK, "home.tmpl", page)
		return
	}
	page.ReportHref = template.URL(report.DataURI(pdf))
	c.HTML(http.StatusOK, "home.tmpl", page)
}

func (s *server) predictJSON(c *gin.Context) {
	var obs observation.Observation
	if err := c.ShouldBindJSON(&obs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	obs = obs.Clamp()

	assessment, err := risk.Assess(c.Request.Context(), s.classifier, obs)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction failed"})
		return
	}

	resp := predictResponse{
		Label:  assessment.Label.String(),
		Class:  assessment.Label.Class(),
		Source: s.backend,
	}
	pdf, err := s.render(c, assessment)
	if err != nil {
		resp.ReportError = "report generation failed"
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Report = &reportEnvelope{Filename: report.DownloadName, DataURI: report.DataURI(pdf)}
	c.JSON(http.StatusOK, resp)
}

func (s *server) reportPDF(c *gin.Context) {
	var obs observation.Observation
	if err := c.ShouldBindJSON(&obs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	assessment, err := risk.Assess(c.Request.Context(), s.classifier, obs.Clamp())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction failed"})
		return
	}

	pdf, err := s.render(c, assessment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.DownloadName))
	c.Data(http.StatusOK, report.MediaType, pdf)
}

func (s *server) render(c *gin.Context, a risk.Assessment) ([]byte, error) {
	pdf, err := s.reports.Render(a.Observation.ReportLines(), a.Label.String())
	if err != nil {
		_ = c.Error(err)
		s.log.Error("report generation failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		return nil, err
	}
	return pdf, nil
}

func (s *server) datasetPage(c *gin.Context) {
	page := datasetPage{Tab: "dataset", Table: s.dataset}
	if s.dataset == nil {
		page.Error = "The dataset is not available."
		c.HTML(http.StatusOK, "dataset.tmpl", page)
		return
	}

	counts, err := s.dataset.Distribution(dataset.RiskColumn)
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusOK, "dataset.tmpl", page)
		return
	}
	page.Distribution = bars(counts)
	c.HTML(http.StatusOK, "dataset.tmpl", page)
}

func (s *server) distributionJSON(c *gin.Context) {
	if s.dataset == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset unavailable"})
		return
	}
	counts, err := s.dataset.Distribution(dataset.RiskColumn)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": dataset.RiskColumn, "counts": counts})
}

func bars(counts []dataset.Count) []distributionBar {
	top := 0
	for _, c := range counts {
		if c.Count > top {
			top = c.Count
		}
	}
	out := make([]distributionBar, 0, len(counts))
	for _, c := range counts {
		pct := 0.0
		if top > 0 {
			pct = float64(c.Count) * 100 / float64(top)
		}
		out = append(out, distributionBar{Category: c.Category, Count: c.Count, Percent: pct})
	}
	return out
}
