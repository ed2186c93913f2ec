// Package launcher coordinates one launcher run.
//
// The download phase fetches every missing, enabled, downloadable
// application concurrently and unpacks the archives once all fetches have
// settled. The launch phase then spawns each application, except the
// renderer which instead gets a replay watch. Run joins every handle and
// returns a Report; failures are recorded per application and never stop
// the rest.
package launcher
