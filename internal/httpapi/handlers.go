package httpapi

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/teamops/internal/app"
	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/csvio"
	"kyri56xcaesar/teamops/internal/logger"
)

func writeAppError(c *gin.Context, err error) {
	var (
		importErr   *app.ImportError
		cascadeErr  *app.CascadeError
		writeErr    *app.WriteError
		notFoundErr *app.NotFoundError
	)
	switch {
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &importErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": importErr.Error()})
	case errors.As(err, &cascadeErr):
		logger.Error("cascade failure", "entity", cascadeErr.Entity, "id", cascadeErr.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cascade delete failed"})
	case errors.As(err, &writeErr):
		logger.Error("persistence failure", "entity", writeErr.Entity, "op", writeErr.Op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func stateVersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": stateVersion.Load()})
}

func loginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	var accessToken string
	if kcService != nil && req.Username != "" {
		jwt, err := kcService.LoginUser(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})

			return
		}
		accessToken = jwt.AccessToken
	}

	if err := controller.RecordLogin(c.Request.Context(), req.MemberID); err != nil {
		writeAppError(c, err)

		return
	}

	resp := gin.H{"status": "ok", "session": controller.CurrentSession()}
	if accessToken != "" {
		resp["access_token"] = accessToken
	}
	c.JSON(http.StatusOK, resp)
}

func logoutHandler(c *gin.Context) {
	controller.Logout()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func sessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, controller.CurrentSession())
}

func setViewHandler(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}
	controller.SetLastView(req.View)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setThemeHandler(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}
	controller.SetTheme(req.Theme)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func listMembersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, controller.Members())
}

func listProjectsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, controller.Projects())
}

func createProjectHandler(c *gin.Context) {
	var p appstate.Project
	if err := c.ShouldBind(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	created, err := controller.CreateProject(c.Request.Context(), p)
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusCreated, created)
}

func updateProjectHandler(c *gin.Context) {
	var p appstate.Project
	if err := c.ShouldBind(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}
	p.ID = c.Param("id")

	actor, _ := c.GetQuery("actor")
	updated, err := controller.UpdateProject(c.Request.Context(), actor, p)
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, updated)
}

func deleteProjectHandler(c *gin.Context) {
	if err := controller.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func listAttendanceHandler(c *gin.Context) {
	records := controller.AttendanceRecords()

	if member := c.Query("memberId"); member != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.MemberID == member {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, records)
}

func upsertAttendanceHandler(c *gin.Context) {
	var req AttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	rec, err := controller.UpsertAttendance(c.Request.Context(), app.AttendanceUpdate{
		MemberID:  req.MemberID,
		Date:      req.Date,
		Status:    req.Status,
		LeaveType: req.LeaveType,
		Notes:     req.Notes,
	})
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, rec)
}

func deleteAttendanceHandler(c *gin.Context) {
	var req AttendanceDeleteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	if err := controller.DeleteAttendance(c.Request.Context(), req.MemberID, req.Date); err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func listNotesHandler(c *gin.Context) {
	notes := controller.Notes()

	if owner := c.Query("userId"); owner != "" {
		filtered := notes[:0]
		for _, n := range notes {
			if n.UserID == owner {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}

	c.JSON(http.StatusOK, notes)
}

func createNoteHandler(c *gin.Context) {
	var n appstate.Note
	if err := c.ShouldBind(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	actor := n.UserID
	if sess := controller.CurrentSession(); sess.UserID != "" {
		actor = sess.UserID
	}

	created, err := controller.CreateNote(c.Request.Context(), actor, n)
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusCreated, created)
}

func updateNoteHandler(c *gin.Context) {
	var n appstate.Note
	if err := c.ShouldBind(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}
	n.ID = c.Param("id")

	updated, err := controller.UpdateNote(c.Request.Context(), n)
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, updated)
}

func deleteNoteHandler(c *gin.Context) {
	if err := controller.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func listWorkLogsHandler(c *gin.Context) {
	logs := controller.WorkLogs()

	if member := c.Query("memberId"); member != "" {
		filtered := logs[:0]
		for _, w := range logs {
			if w.MemberID == member {
				filtered = append(filtered, w)
			}
		}
		logs = filtered
	}

	c.JSON(http.StatusOK, logs)
}

func addWorkLogsHandler(c *gin.Context) {
	var entries []appstate.WorkLog
	if err := c.ShouldBind(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	added, err := controller.AddWorkLogs(c.Request.Context(), entries)
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusCreated, added)
}

func deleteWorkLogHandler(c *gin.Context) {
	if err := controller.DeleteWorkLog(c.Request.Context(), c.Param("id")); err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func activityHandler(c *gin.Context) {
	c.JSON(http.StatusOK, controller.Activities())
}

func settingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, controller.Settings())
}

func exportHandler(c *gin.Context) {
	collection := c.Param("collection")

	headers, rows, err := controller.ExportCSV(collection)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	var buf bytes.Buffer
	if err := csvio.Write(&buf, headers, rows); err != nil {
		logger.Error("csv export failed", "collection", collection, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})

		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+collection+`.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
