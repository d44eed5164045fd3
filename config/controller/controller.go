package controller

import (
	"encoding/json"
	"net/http"

	"manifesthub/config/domain"
	"manifesthub/internal/exceptions"
)

type Controller struct {
	Config *domain.Config
}

func (c *Controller) ReadConfig() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceName := r.PathValue("serviceName")
		config, err := c.Config.Get(serviceName)
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		rsp, err := json.Marshal(&config)
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		w.Write(rsp)
	})
}
