/*
Package termcat is the library behind rp, a cat(1) that draws raster images
inline. Text inputs are copied through the cat transformations of package
cat; image inputs are decoded, scaled down to fit a pixel box and sent to
the terminal with the kitty graphics protocol or as sixel.

Supported protocols:

  - Kitty: the image is re-encoded as PNG, base64 encoded and sent in
    chunked APC frames (ESC _ G ... ESC \)
  - Sixel: the image is flattened onto a background color and sent as a
    single DCS string (ESC P ... ESC \)

Both are wrapped for tmux passthrough when running inside tmux.

Basic Usage:

	enc, err := termcat.NewEncoder(termcat.Auto, termcat.EncoderOptions{})
	if err != nil {
	    log.Fatal(err)
	}

	d := termcat.NewDispatcher(os.Stdout, termcat.DispatchOptions{
	    Cat:     cat.Options{Number: true},
	    Bounds:  termcat.DefaultBounds(),
	    Encoder: enc,
	})
	if err := d.Run([]string{"notes.txt", "diagram.png"}); err != nil {
	    log.Fatal(err)
	}

Single images:

	img, _, err := termcat.Decode(f)
	if err != nil {
	    log.Fatal(err)
	}
	img = termcat.ResizeToBounds(img, termcat.Bounds{MaxWidth: 640, MaxHeight: 480})
	err = (&termcat.KittyEncoder{ChunkSize: termcat.CHUNK_SIZE}).Encode(os.Stdout, img)

Protocol Detection:

	switch termcat.DetectProtocol() {
	case termcat.Kitty:
	    fmt.Println("Kitty graphics protocol supported")
	case termcat.Sixel:
	    fmt.Println("Sixel protocol supported")
	}

Errors returned by the Dispatcher are *Error values; match them with
errors.Is against ErrNotFound, ErrDecode, ErrEncode, ErrIO and ErrLock, or
inspect KindOf(err).
*/
package termcat
