package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/murmurchat/murmur/pkg/apierror"
)

// respondError — единственное место, где ошибка превращается в HTTP-ответ.
// Нераспознанные ошибки уходят наружу как 500 без внутренних деталей.
func respondError(c *gin.Context, err error) {
	status := apierror.StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	c.JSON(status, gin.H{"message": apierror.MessageOf(err)})
}
