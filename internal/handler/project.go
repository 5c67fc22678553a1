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
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name     string
	projects store.ProjectService
	rules    store.RuleService
}

func NewProjectMgr(conf RegisterConfig) Manager {
	return &ProjectMgr{
		name:     "project",
		projects: store.NewProjectService(conf.DB),
		rules:    store.NewRuleService(conf.DB),
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(g *gin.RouterGroup) {
	g.GET("", mgr.ListProjects)
	g.GET("/:id", mgr.GetProject)
}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.CreateProject)
	g.PUT("/:id", mgr.UpdateProject)
	g.DELETE("/:id", mgr.DeleteProject)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ProjectIDReq struct {
	ID uint `uri:"id" binding:"required"`
}

// ListProjects godoc
// @Summary List all projects that are not deleted
// @Tags project
// @Produce json
// @Success 200 {object} resputil.Response[[]model.Project]
// @Router /v1/occurrence/annotation/project [get]
func (mgr *ProjectMgr) ListProjects(c *gin.Context) {
	projects, err := mgr.projects.List()
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, projects)
}

// GetProject godoc
// @Summary Get a single project (may be deleted)
// @Tags project
// @Produce json
// @Success 200 {object} resputil.Response[model.Project]
// @Router /v1/occurrence/annotation/project/{id} [get]
func (mgr *ProjectMgr) GetProject(c *gin.Context) {
	var req ProjectIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	project, err := mgr.projects.Get(req.ID)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, project)
}

// CreateProject godoc
// @Summary Create a new project; the creator is always a member
// @Tags project
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Project]
// @Router /v1/occurrence/annotation/project [post]
func (mgr *ProjectMgr) CreateProject(c *gin.Context) {
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	created, err := mgr.projects.Create(&project, util.GetActor(c))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	klog.Infof("project %d created by %s", created.ID, created.CreatedBy)
	resputil.Success(c, created)
}

// UpdateProject godoc
// @Summary Update a project; any current member may update
// @Tags project
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Project]
// @Router /v1/occurrence/annotation/project/{id} [put]
func (mgr *ProjectMgr) UpdateProject(c *gin.Context) {
	var reqID ProjectIDReq
	if err := c.ShouldBindUri(&reqID); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	updated, err := mgr.projects.Update(reqID.ID, &project, util.GetActor(c))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	resputil.Success(c, updated)
}

// DeleteProject godoc
// @Summary Logical delete a project and all rules scoped to it
// @Tags project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Project]
// @Router /v1/occurrence/annotation/project/{id} [delete]
func (mgr *ProjectMgr) DeleteProject(c *gin.Context) {
	var req ProjectIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	actor := util.GetActor(c)
	deleted, err := mgr.projects.Delete(req.ID, actor)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	if err := mgr.rules.DeleteByProject(req.ID, actor.Username); err != nil {
		handleStoreError(c, err)
		return
	}
	klog.Infof("project %d deleted by %s", req.ID, actor.Username)
	resputil.Success(c, deleted)
}
