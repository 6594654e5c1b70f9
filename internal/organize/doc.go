// Package organize moves downloaded artifacts into the destination tree.
//
// A Placer takes the DownloadOutcome of one release, expands extracted
// archive directories into their files, renders each file's path with the
// audio or the extra template and moves it into place:
//
//	placer := organize.NewPlacer(fs, builder, audio.TagProber{}, platform, organize.Options{
//	    AudioTemplate: settings.Output,
//	    ExtraTemplate: settings.OutputExtra,
//	})
//	placed, errs := placer.Place(outcome, base, release.Tracks)
package organize
