// Package movieflair is the HTTP front server of the MovieFlair site.
//
// An App routes every request to one of three places:
//
//   - static files from the client build (or the public directory in
//     development), with cache headers by fingerprint
//   - /sitemap.xml, generated from the catalog
//   - the render dispatcher, which serves the client shell or a streamed
//     server render depending on the route and the client
//
// Build assembles an App and its collaborators from an internal/config
// Config; cmd/movieflair runs it.
//
//	cfg, _ := config.Load(config.LoadOptions{})
//	rt, err := movieflair.Build(ctx, cfg, movieflair.BuildOptions{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//	http.ListenAndServe(cfg.Address(), rt.App)
package movieflair
