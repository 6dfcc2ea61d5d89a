package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/csvio"
	"kyri56xcaesar/teamops/internal/logger"
)

func createMemberHandler(c *gin.Context) {
	var m appstate.TeamMember
	if err := c.ShouldBind(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}
	if m.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})

		return
	}

	created, err := controller.CreateMember(c.Request.Context(), m)
	if err != nil {
		writeAppError(c, err)

		return
	}

	// mirror the roster into the realm, best effort
	if kcService != nil && created.Email != "" {
		_, err := kcService.ProvisionMember(
			c.Request.Context(),
			created.Email,
			created.Email,
			c.Query("initial_password"),
			created.Name,
			created.Role == appstate.RoleManager,
		)
		if err != nil {
			logger.Error("could not provision realm account", "member", created.ID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, created)
}

func updateMemberHandler(c *gin.Context) {
	var m appstate.TeamMember
	if err := c.ShouldBind(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}
	m.ID = c.Param("id")

	updated, err := controller.UpdateMember(c.Request.Context(), m)
	if err != nil {
		writeAppError(c, err)

		return
	}

	if kcService != nil && updated.Email != "" && updated.Status != appstate.MemberActive {
		if err := kcService.SetMemberEnabled(c.Request.Context(), updated.Email, false); err != nil {
			logger.Error("could not disable realm account", "member", updated.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, updated)
}

func deleteMemberHandler(c *gin.Context) {
	id := c.Param("id")

	var email string
	for _, m := range controller.Members() {
		if m.ID == id {
			email = m.Email
			break
		}
	}

	if err := controller.DeleteMember(c.Request.Context(), id); err != nil {
		writeAppError(c, err)

		return
	}

	if kcService != nil && email != "" {
		if err := kcService.RemoveMember(c.Request.Context(), email); err != nil {
			logger.Error("could not remove realm account", "member", id, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func updateSettingsHandler(c *gin.Context) {
	var s appstate.AppSettings
	if err := c.ShouldBind(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})

		return
	}

	updated, err := controller.UpdateSettings(c.Request.Context(), s)
	if err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, updated)
}

func importHandler(c *gin.Context) {
	collection := c.Param("collection")

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing csv file"})

		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable csv file"})

		return
	}
	defer f.Close()

	rows, err := csvio.Parse(f)
	if err != nil {
		if errors.Is(err, csvio.ErrEmptyFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty csv file"})

			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := controller.ImportCSV(c.Request.Context(), collection, rows); err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "rows": len(rows)})
}

func reloadHandler(c *gin.Context) {
	if err := controller.Reload(c.Request.Context()); err != nil {
		writeAppError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
