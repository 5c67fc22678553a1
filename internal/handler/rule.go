package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/gbif/occurrence-annotation/dao/model"
	"github.com/gbif/occurrence-annotation/dao/store"
	"github.com/gbif/occurrence-annotation/internal/resputil"
	"github.com/gbif/occurrence-annotation/internal/util"
	"github.com/gbif/occurrence-annotation/pkg/rulefilter"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewRuleMgr)
}

type RuleMgr struct {
	name     string
	rules    store.RuleService
	comments store.CommentService
}

func NewRuleMgr(conf RegisterConfig) Manager {
	return &RuleMgr{
		name:     "rule",
		rules:    store.NewRuleService(conf.DB),
		comments: store.NewCommentService(conf.DB),
	}
}

func (mgr *RuleMgr) GetName() string { return mgr.name }

func (mgr *RuleMgr) RegisterPublic(g *gin.RouterGroup) {
	g.GET("", mgr.ListRules)
	g.GET("/metrics", mgr.GetMetrics)
	g.GET("/:id", mgr.GetRule)
	g.GET("/:id/comment", mgr.ListComments)
}

func (mgr *RuleMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/my", mgr.ListMyRules)
	g.GET("/supported", mgr.ListSupportedRules)
	g.GET("/contested", mgr.ListContestedRules)
	g.POST("", mgr.CreateRule)
	g.PUT("/:id", mgr.UpdateRule)
	g.DELETE("/:id", mgr.DeleteRule)
	g.POST("/:id/support", mgr.SupportRule)
	g.POST("/:id/removeSupport", mgr.RemoveSupport)
	g.POST("/:id/contest", mgr.ContestRule)
	g.POST("/:id/removeContest", mgr.RemoveContest)
	g.POST("/:id/comment", mgr.AddComment)
	g.DELETE("/:id/comment/:commentId", mgr.DeleteComment)
}

func (mgr *RuleMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	// ListRulesReq carries the optional filter parameters. datasetKey and
	// contextKey are aliases; "null" finds rules where the field is unset.
	ListRulesReq struct {
		TaxonKey             *int64   `form:"taxonKey"`
		DatasetKey           string   `form:"datasetKey"`
		ContextKey           string   `form:"contextKey"`
		RulesetID            *uint    `form:"rulesetId"`
		ProjectID            *uint    `form:"projectId"`
		BasisOfRecord        []string `form:"basisOfRecord"`
		BasisOfRecordNegated *bool    `form:"basisOfRecordNegated"`
		YearRange            string   `form:"yearRange"`
		Geometry             string   `form:"geometry"`
		CreatedBy            string   `form:"createdBy"`
		SupportedBy          string   `form:"supportedBy"`
		ContestedBy          string   `form:"contestedBy"`
		Comment              string   `form:"comment"`
		Limit                int      `form:"limit"`
		Offset               int      `form:"offset"`
	}

	RuleIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	CommentIDReq struct {
		ID        uint `uri:"id" binding:"required"`
		CommentID uint `uri:"commentId" binding:"required"`
	}

	AddCommentReq struct {
		Comment string `json:"comment" binding:"required"`
	}

	MetricsReq struct {
		Username   string `form:"username"`
		TaxonKey   *int64 `form:"taxonKey"`
		DatasetKey string `form:"datasetKey"`
		RulesetID  *uint  `form:"rulesetId"`
		ProjectID  *uint  `form:"projectId"`
	}
)

func (req *ListRulesReq) toParams() rulefilter.Params {
	datasetKey := req.DatasetKey
	if datasetKey == "" {
		datasetKey = req.ContextKey
	}
	return rulefilter.Params{
		TaxonKey:             req.TaxonKey,
		DatasetKey:           datasetKey,
		RulesetID:            req.RulesetID,
		ProjectID:            req.ProjectID,
		BasisOfRecord:        req.BasisOfRecord,
		BasisOfRecordNegated: req.BasisOfRecordNegated,
		YearRange:            req.YearRange,
		Geometry:             req.Geometry,
		CreatedBy:            req.CreatedBy,
		SupportedBy:          req.SupportedBy,
		ContestedBy:          req.ContestedBy,
		Comment:              req.Comment,
		Limit:                req.Limit,
		Offset:               req.Offset,
	}
}

// ListRules godoc
// @Summary List all rules that are not deleted
// @Description Optionally filtered by taxonKey, datasetKey, rulesetId, projectId, basisOfRecord, yearRange, geometry, createdBy, supportedBy, contestedBy and comment text
// @Tags rule
// @Produce json
// @Success 200 {object} resputil.Response[[]model.Rule]
// @Router /v1/occurrence/annotation/rule [get]
func (mgr *RuleMgr) ListRules(c *gin.Context) {
	var req ListRulesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	mgr.list(c, req.toParams())
}

// ListMyRules godoc
// @Summary List rules created by the current user
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Rule]
// @Router /v1/occurrence/annotation/rule/my [get]
func (mgr *RuleMgr) ListMyRules(c *gin.Context) {
	var req ListRulesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	params := req.toParams()
	params.CreatedBy = util.GetToken(c).Username
	params.SupportedBy = ""
	params.ContestedBy = ""
	mgr.list(c, params)
}

// ListSupportedRules godoc
// @Summary List rules supported by the current user
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Rule]
// @Router /v1/occurrence/annotation/rule/supported [get]
func (mgr *RuleMgr) ListSupportedRules(c *gin.Context) {
	var req ListRulesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	params := req.toParams()
	params.CreatedBy = ""
	params.SupportedBy = util.GetToken(c).Username
	params.ContestedBy = ""
	mgr.list(c, params)
}

// ListContestedRules godoc
// @Summary List rules contested by the current user
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Rule]
// @Router /v1/occurrence/annotation/rule/contested [get]
func (mgr *RuleMgr) ListContestedRules(c *gin.Context) {
	var req ListRulesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	params := req.toParams()
	params.CreatedBy = ""
	params.SupportedBy = ""
	params.ContestedBy = util.GetToken(c).Username
	mgr.list(c, params)
}

func (mgr *RuleMgr) list(c *gin.Context, params rulefilter.Params) {
	rules, err := mgr.rules.List(params)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, rules)
}

// GetRule godoc
// @Summary Get a single rule (may be deleted)
// @Tags rule
// @Produce json
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id} [get]
func (mgr *RuleMgr) GetRule(c *gin.Context) {
	var req RuleIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	rule, err := mgr.rules.Get(req.ID)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, rule)
}

// CreateRule godoc
// @Summary Create a new rule
// @Tags rule
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule [post]
func (mgr *RuleMgr) CreateRule(c *gin.Context) {
	var rule model.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	created, err := mgr.rules.Create(&rule, util.GetActor(c))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	klog.Infof("rule %d created by %s", created.ID, created.CreatedBy)
	resputil.Success(c, created)
}

// UpdateRule godoc
// @Summary Update an existing rule
// @Tags rule
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id} [put]
func (mgr *RuleMgr) UpdateRule(c *gin.Context) {
	var reqID RuleIDReq
	if err := c.ShouldBindUri(&reqID); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	var rule model.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	updated, err := mgr.rules.Update(reqID.ID, &rule, util.GetActor(c))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, updated)
}

// DeleteRule godoc
// @Summary Logical delete a rule
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id} [delete]
func (mgr *RuleMgr) DeleteRule(c *gin.Context) {
	var req RuleIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	deleted, err := mgr.rules.Delete(req.ID, util.GetActor(c))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	klog.Infof("rule %d deleted by %s", req.ID, util.GetToken(c).Username)
	resputil.Success(c, deleted)
}

// SupportRule godoc
// @Summary Add support for a rule, removing any contest by the user
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id}/support [post]
func (mgr *RuleMgr) SupportRule(c *gin.Context) {
	mgr.vote(c, mgr.rules.Support)
}

// RemoveSupport godoc
// @Summary Remove the user's support for a rule
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id}/removeSupport [post]
func (mgr *RuleMgr) RemoveSupport(c *gin.Context) {
	mgr.vote(c, mgr.rules.RemoveSupport)
}

// ContestRule godoc
// @Summary Record that the user contests a rule, removing any support by the user
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id}/contest [post]
func (mgr *RuleMgr) ContestRule(c *gin.Context) {
	mgr.vote(c, mgr.rules.Contest)
}

// RemoveContest godoc
// @Summary Remove the user's contest of a rule
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Rule]
// @Router /v1/occurrence/annotation/rule/{id}/removeContest [post]
func (mgr *RuleMgr) RemoveContest(c *gin.Context) {
	mgr.vote(c, mgr.rules.RemoveContest)
}

func (mgr *RuleMgr) vote(c *gin.Context, transition func(id uint, username string) (*model.Rule, error)) {
	var req RuleIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	rule, err := transition(req.ID, util.GetToken(c).Username)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, rule)
}

// ListComments godoc
// @Summary List all non-deleted comments of a rule
// @Tags rule
// @Produce json
// @Success 200 {object} resputil.Response[[]model.Comment]
// @Router /v1/occurrence/annotation/rule/{id}/comment [get]
func (mgr *RuleMgr) ListComments(c *gin.Context) {
	var req RuleIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	comments, err := mgr.comments.List(req.ID)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, comments)
}

// AddComment godoc
// @Summary Add a comment to a rule
// @Tags rule
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Comment]
// @Router /v1/occurrence/annotation/rule/{id}/comment [post]
func (mgr *RuleMgr) AddComment(c *gin.Context) {
	var reqID RuleIDReq
	if err := c.ShouldBindUri(&reqID); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	var req AddCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	comment := model.Comment{RuleID: reqID.ID, Comment: req.Comment}
	created, err := mgr.comments.Create(&comment, util.GetActor(c))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, created)
}

// DeleteComment godoc
// @Summary Logical delete a comment
// @Tags rule
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[any]
// @Router /v1/occurrence/annotation/rule/{id}/comment/{commentId} [delete]
func (mgr *RuleMgr) DeleteComment(c *gin.Context) {
	var req CommentIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	if err := mgr.comments.Delete(req.CommentID, util.GetActor(c)); err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, nil)
}

// GetMetrics godoc
// @Summary Aggregate metrics for rules
// @Description Optionally filtered by username, taxonKey, datasetKey, rulesetId and projectId
// @Tags rule
// @Produce json
// @Success 200 {object} resputil.Response[model.RuleMetrics]
// @Router /v1/occurrence/annotation/rule/metrics [get]
func (mgr *RuleMgr) GetMetrics(c *gin.Context) {
	var req MetricsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	metrics, err := mgr.rules.Metrics(store.MetricsFilter{
		Username:   req.Username,
		TaxonKey:   req.TaxonKey,
		DatasetKey: req.DatasetKey,
		RulesetID:  req.RulesetID,
		ProjectID:  req.ProjectID,
	})
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, metrics)
}
