package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func listProductsHandler(svc ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			logger.Printf("products: list error=%v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
			return
		}
		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, toProductResponse(p))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "products": out})
	}
}
