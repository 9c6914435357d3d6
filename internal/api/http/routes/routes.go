package routes

import (
	"github.com/gin-gonic/gin"

	projecthttp "github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/http"
)

type Deps struct {
	Projects projecthttp.ProjectService
	Events   projecthttp.EventSource
}

// Register mounts the public API. Paths are unversioned: /projects...
func Register(r gin.IRouter, dep Deps) {
	projectsGroup := r.Group("/projects")
	projecthttp.New(dep.Projects, dep.Events).Register(projectsGroup)
}
