package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/mqsentinel/internal/chat"
	"github.com/zulandar/mqsentinel/internal/issues"
	"github.com/zulandar/mqsentinel/internal/listener"
	"github.com/zulandar/mqsentinel/internal/session"
)

// handshakeSuccessMessage is the exact callback body the companion listener
// posts when its broker connection came up.
const handshakeSuccessMessage = "Login successful"

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, orch *session.Orchestrator, slot *chat.Slot) {
	router.POST("/clientconfig", handleLogin(orch))
	router.POST("/loginconfirmation", handleLoginConfirmation(orch))
	router.POST("/logout", handleLogout(orch, slot))

	router.GET("/getallqueues", handleQueues(orch))
	router.GET("/getallchannels", handleChannels(orch))
	router.GET("/getallapplications", handleApplications(orch))

	router.GET("/queuethresholdmanager", handleThresholdsGet(orch))
	router.POST("/queuethresholdmanager", handleThresholdsSet(orch))

	router.GET("/issues", handleIssuesGet(orch))
	router.POST("/issues", handleIssuesPost(orch))
	router.POST("/resolve", handleResolve(orch))

	router.POST("/chatbotquery", handleChatSubmit(slot))
	router.GET("/chatbotquery", handleChatPoll(slot))

	router.GET("/status", handleStatus(orch))
}

func handleLogin(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg session.Config
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		if err := orch.Login(c.Request.Context(), cfg); err != nil {
			writeLoginError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": handshakeSuccessMessage})
	}
}

// confirmationBody is what the companion listener posts after startup.
type confirmationBody struct {
	Message string `json:"message"`
}

func handleLoginConfirmation(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body confirmationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		res := session.HandshakeResult{
			OK:      body.Message == handshakeSuccessMessage,
			Message: body.Message,
		}
		if !orch.ConfirmHandshake(res) {
			c.JSON(http.StatusConflict, gin.H{"message": "No login attempt is awaiting confirmation."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Confirmation received."})
	}
}

func handleLogout(orch *session.Orchestrator, slot *chat.Slot) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch.Logout()
		if slot != nil {
			slot.Reset()
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
	}
}

func handleQueues(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		queues, err := orch.Queues(c.Request.Context())
		if err != nil {
			writeDataError(c, err)
			return
		}
		c.JSON(http.StatusOK, queues)
	}
}

func handleChannels(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		channels, err := orch.Channels(c.Request.Context())
		if err != nil {
			writeDataError(c, err)
			return
		}
		c.JSON(http.StatusOK, channels)
	}
}

func handleApplications(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := orch.Applications(c.Request.Context())
		if err != nil {
			writeDataError(c, err)
			return
		}
		c.JSON(http.StatusOK, apps)
	}
}

func handleThresholdsGet(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Thresholds().Snapshot())
	}
}

func handleThresholdsSet(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw map[string]interface{}
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}

		entries := make(map[string]float64, len(raw))
		for name, v := range raw {
			f, ok := v.(float64)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": fmt.Sprintf("Threshold for %q must be numeric.", name),
				})
				return
			}
			if f < 0 || f > 1 {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": fmt.Sprintf("Threshold for %q must be between 0 and 1.", name),
				})
				return
			}
			entries[name] = f
		}

		orch.Thresholds().Update(entries)
		c.JSON(http.StatusOK, gin.H{"message": "Thresholds updated."})
	}
}

func handleIssuesGet(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Issues())
	}
}

func handleIssuesPost(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var batch []issues.Issue
		if err := c.ShouldBindJSON(&batch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		orch.ReportIssues(batch)
		c.JSON(http.StatusOK, gin.H{"message": "Issues recorded."})
	}
}

// resolveBody names the issue being acknowledged.
type resolveBody struct {
	ObjectName string `json:"mqobjectName"`
	IssueCode  string `json:"issueCode"`
}

func handleResolve(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body resolveBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		if strings.TrimSpace(body.ObjectName) == "" || strings.TrimSpace(body.IssueCode) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "mqobjectName and issueCode are required."})
			return
		}
		orch.Resolve(body.ObjectName, issues.Code(body.IssueCode))
		c.JSON(http.StatusOK, gin.H{"message": "Issue resolved."})
	}
}

// queryBody is a chat question with its framing mode.
type queryBody struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
}

func handleChatSubmit(slot *chat.Slot) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slot == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "The assistant is not configured."})
			return
		}
		var body queryBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		if err := slot.Submit(body.Question, chat.Mode(body.Mode)); err != nil {
			if errors.Is(err, chat.ErrQueryBusy) {
				c.JSON(http.StatusConflict, gin.H{"message": "A query is already being processed. Please retry once it completes."})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Query accepted."})
	}
}

func handleChatPoll(slot *chat.Slot) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slot == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "The assistant is not configured."})
			return
		}
		status, answer := slot.Poll()
		resp := gin.H{"status": status.String()}
		if status == chat.StatusAnswered {
			resp["answer"] = answer
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleStatus(orch *session.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Status())
	}
}

// writeLoginError maps the login error taxonomy onto responses that tell the
// operator which subsystem to act on.
func writeLoginError(c *gin.Context, err error) {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Please provide all required fields: %s.", strings.Join(verr.Missing, ", ")),
		})
		return
	}

	var cerr *session.ConnectError
	if errors.As(err, &cerr) {
		if cerr.Credential() {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Login failed: the queue manager rejected the credentials."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"message": "Login failed: unable to reach the queue manager admin API."})
		return
	}

	var merr *session.ManagerNotRunningError
	if errors.As(err, &merr) {
		c.JSON(http.StatusConflict, gin.H{
			"message": fmt.Sprintf("Login failed: the queue manager is not running (state %q).", merr.State),
		})
		return
	}

	var serr *listener.SpawnError
	if errors.As(err, &serr) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed: the event listener could not be started."})
		return
	}

	var terr *session.HandshakeTimeoutError
	if errors.As(err, &terr) {
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"message": fmt.Sprintf("Login failed: the event listener did not confirm startup within %s.", terr.Timeout),
		})
		return
	}

	var ferr *session.HandshakeFailure
	if errors.As(err, &ferr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"message": fmt.Sprintf("Login failed: the event listener reported: %s", ferr.Message),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed: internal error."})
}

// writeDataError maps data-path errors.
func writeDataError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNoSession) {
		c.JSON(http.StatusConflict, gin.H{"message": "No active session. Please log in first."})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"message": "Unable to fetch data from the queue manager."})
}
